package types

import (
	"strings"

	"wristmon-go/errcode"
)

// ------------------------
// Program state
// ------------------------

// ProgramState selects the dispatcher run on each tick.
type ProgramState uint32

const (
	AWMode ProgramState = iota // activity recognition, wrist
	SMMode                     // sleep monitor

	numProgramStates
)

// NumProgramStates is the modulus used by the button toggle.
const NumProgramStates = uint32(numProgramStates)

func (p ProgramState) String() string {
	switch p {
	case AWMode:
		return "aw"
	case SMMode:
		return "sm"
	default:
		return "unknown"
	}
}

func ParseProgramState(s string) (ProgramState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "aw", "aw_mode", "activity":
		return AWMode, nil
	case "sm", "sm_mode", "sleep":
		return SMMode, nil
	default:
		return 0, &errcode.E{C: errcode.InvalidConfig, Op: "types.ParseProgramState", Msg: "unknown mode " + s}
	}
}

// ------------------------
// Output byte protocol
// ------------------------

// One byte per logical event, no framing.
const (
	CodeNoActivity  byte = 'a'
	CodeStationary  byte = 'b'
	CodeStanding    byte = 'c'
	CodeSitting     byte = 'd'
	CodeLying       byte = 'e'
	CodeWalking     byte = 'f'
	CodeFastWalking byte = 'g'
	CodeJogging     byte = 'h'
	CodeBiking      byte = 'i'
	CodeUnknown     byte = 'j'
	CodeNoSleep     byte = 'n'
	CodeSleep       byte = 'o'
	CodeTurnOver    byte = 'q'
)

// TurnOverBurst is the number of alert bytes sent per turn-over event.
const TurnOverBurst = 10

// CodeInfo describes one output byte for hosts and tooling.
type CodeInfo struct {
	Code        byte   `json:"code" yaml:"code"`
	Source      string `json:"source" yaml:"source"`
	Description string `json:"description" yaml:"description"`
}

// CodeTable lists every byte the device can send.
var CodeTable = []CodeInfo{
	{CodeNoActivity, "aw", "no activity"},
	{CodeStationary, "aw", "stationary"},
	{CodeStanding, "aw", "standing"},
	{CodeSitting, "aw", "sitting"},
	{CodeLying, "aw", "lying"},
	{CodeWalking, "aw", "walking"},
	{CodeFastWalking, "aw", "fast walking"},
	{CodeJogging, "aw", "jogging"},
	{CodeBiking, "aw", "biking"},
	{CodeUnknown, "aw/sm", "unknown"},
	{CodeNoSleep, "sm", "no sleep"},
	{CodeSleep, "sm", "sleep"},
	{CodeTurnOver, "sm", "turn-over alert (x10)"},
}

// ------------------------
// Bus payloads
// ------------------------

// ModeValue is published retained whenever the program state changes.
type ModeValue struct {
	State ProgramState `json:"state"`
	TS    int64        `json:"ts_ms"`
}

// CodeValue is published for each byte handed to the serial sink.
type CodeValue struct {
	Code byte  `json:"code"`
	Sent bool  `json:"sent"`
	TS   int64 `json:"ts_ms"` // logical clock
}

// ButtonValue is published on every debounced button edge.
type ButtonValue struct {
	Pressed bool  `json:"pressed"`
	TS      int64 `json:"ts_ms"`
}

// ------------------------
// Classifier results
// ------------------------

// Activity is the activity-recognition classifier output.
type Activity uint8

const (
	NoActivity Activity = iota
	Stationary
	Standing
	Sitting
	Lying
	Walking
	FastWalking
	Jogging
	Biking
	ActivityUnknown
)

func (a Activity) String() string {
	switch a {
	case NoActivity:
		return "no_activity"
	case Stationary:
		return "stationary"
	case Standing:
		return "standing"
	case Sitting:
		return "sitting"
	case Lying:
		return "lying"
	case Walking:
		return "walking"
	case FastWalking:
		return "fast_walking"
	case Jogging:
		return "jogging"
	case Biking:
		return "biking"
	default:
		return "unknown"
	}
}

// SleepState is the sleep-monitor classifier output.
type SleepState uint8

const (
	NoSleep SleepState = iota
	Sleep
	SleepOther
)

func (s SleepState) String() string {
	switch s {
	case NoSleep:
		return "no_sleep"
	case Sleep:
		return "sleep"
	default:
		return "other"
	}
}
