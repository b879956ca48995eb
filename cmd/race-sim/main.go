// Command race-sim drives the engine headlessly for a fixed duration and
// prints the leaderboard at intervals from the snapshots Update returns.
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/psybe/pitwall/engine"
	"github.com/psybe/pitwall/racestate"
	"github.com/psybe/pitwall/trackmodel"
)

func main() {
	logger := newLogger()

	track := demoTrack()
	drivers := demoDrivers(20)

	e, err := engine.New(track, drivers, 12345, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build engine")
	}
	e.StartRace()

	const tick = 0.1
	const totalSeconds = 300.0
	const reportEvery = 30.0
	nextReport := reportEvery

	for elapsed := 0.0; elapsed < totalSeconds; elapsed += tick {
		snap := e.Update(tick)
		if elapsed+tick >= nextReport {
			printLeaderboard(snap, elapsed+tick)
			nextReport += reportEvery
		}
		if snap.Status == racestate.StatusFinished {
			printLeaderboard(snap, elapsed+tick)
			break
		}
	}
}

func newLogger() zerolog.Logger {
	writer := zerolog.ConsoleWriter{Out: os.Stdout, NoColor: !isatty.IsTerminal(os.Stdout.Fd())}
	return zerolog.New(writer).With().Timestamp().Logger()
}

func printLeaderboard(snap racestate.Snapshot, elapsed float64) {
	fmt.Printf("=== t=%.0fs lap=%d ===\n", elapsed, snap.CurrentLap)
	for _, v := range snap.Vehicles {
		fmt.Printf("P%-2d %-12s lap=%-3d gap=%6.2fs tyre=%-5s wear=%5.1f\n",
			v.Position, v.DriverID, v.LapCount, v.GapToLeader, v.TyreCompound, v.TyreWear)
	}
}

func demoTrack() *trackmodel.Track {
	return &trackmodel.Track{
		ID:                    "demo-circuit",
		TotalDistance:         5800,
		DefaultTotalLaps:      52,
		TireDegradationFactor: 1.0,
		OvertakingDifficulty:  0.4,
		TrackDifficulty:       0.3,
		BaseTemperature:       24,
		WeatherParams:         trackmodel.WeatherParams{Volatility: 0.3, RainProbability: 0.1},
		Sectors: []trackmodel.Sector{
			{ID: 1, Name: "S1", StartDistance: 0, EndDistance: 2000, Type: trackmodel.SectorStraight, Difficulty: 0.2},
			{ID: 2, Name: "S2", StartDistance: 2000, EndDistance: 4200, Type: trackmodel.SectorCornerMediumSpeed, Difficulty: 0.5},
			{ID: 3, Name: "S3", StartDistance: 4200, EndDistance: 5800, Type: trackmodel.SectorCornerHighSpeed, Difficulty: 0.4},
		},
		DRSZones: []trackmodel.DRSZone{{DetectionDistance: 1800, ActivationDistance: 1900, EndDistance: 2300}},
		PitLane:  trackmodel.PitLane{EntryDistance: 5600, ExitDistance: 200, SpeedLimit: 22},
	}
}

func demoDrivers(n int) []trackmodel.Driver {
	drivers := make([]trackmodel.Driver, n)
	for i := range drivers {
		drivers[i] = trackmodel.Driver{
			ID:       fmt.Sprintf("driver-%02d", i),
			Name:     fmt.Sprintf("Driver %d", i),
			BasePace: 90 + float64(i)*0.15,
			Skill: trackmodel.SkillScores{
				Racecraft: 60, Consistency: 70, TyreManagement: 65, WetWeather: 55,
			},
			Personality:    trackmodel.PersonalityScores{Aggression: 40 + float64(i%5)*10, StressResistance: 60, TeamPlayer: 50},
			StartingMorale: 80,
			StartingTrust:  70,
		}
	}
	return drivers
}
