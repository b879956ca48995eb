package racelogic

import "github.com/psybe/pitwall/racestate"

// CheckFinish implements §4.6's race-end sequence: the checkered flag is
// raised the instant the leader completes the final lap, every vehicle is
// marked finished as it subsequently crosses the line, and the race as a
// whole moves to Finished once no active vehicle is still running.
func (s *System) CheckFinish(state *racestate.RaceState) {
	if state.Status == racestate.StatusFinished {
		return
	}

	if !state.CheckeredFlag {
		for i := range state.Vehicles {
			v := &state.Vehicles[i]
			if v.IsActive() && v.LapCount >= state.TotalLaps {
				state.CheckeredFlag = true
				if state.WinnerID == "" && v.Position == 1 {
					state.WinnerID = v.DriverID
				}
				break
			}
		}
	}
	if state.CheckeredFlag && state.WinnerID == "" {
		for i := range state.Vehicles {
			v := &state.Vehicles[i]
			if v.IsActive() && v.Position == 1 {
				state.WinnerID = v.DriverID
				break
			}
		}
	}
	if !state.CheckeredFlag {
		return
	}

	for i := range state.Vehicles {
		v := &state.Vehicles[i]
		if v.IsActive() && !v.HasFinished && v.LapCount >= state.TotalLaps {
			v.HasFinished = true
		}
	}

	allDone := true
	for i := range state.Vehicles {
		v := &state.Vehicles[i]
		if v.IsActive() && !v.HasFinished {
			allDone = false
			break
		}
	}
	if allDone {
		state.Status = racestate.StatusFinished
	}
}
