package dispatch

import "wristmon-go/types"

// ActivityCode maps a classifier result to its output byte. Anything outside
// the known set is reported as unknown.
func ActivityCode(a types.Activity) byte {
	switch a {
	case types.NoActivity:
		return types.CodeNoActivity
	case types.Stationary:
		return types.CodeStationary
	case types.Standing:
		return types.CodeStanding
	case types.Sitting:
		return types.CodeSitting
	case types.Lying:
		return types.CodeLying
	case types.Walking:
		return types.CodeWalking
	case types.FastWalking:
		return types.CodeFastWalking
	case types.Jogging:
		return types.CodeJogging
	case types.Biking:
		return types.CodeBiking
	default:
		return types.CodeUnknown
	}
}

func SleepCode(s types.SleepState) byte {
	switch s {
	case types.NoSleep:
		return types.CodeNoSleep
	case types.Sleep:
		return types.CodeSleep
	default:
		return types.CodeUnknown
	}
}
