package cloudmanager

import "github.com/waabox/cmdeck/internal/domain"

// Gate names accepted by FindByGate. Any other value is matched literally
// against the step action.
const (
	GateSecurity    = "security"
	GatePerformance = "performance"
	GateDevDeploy   = "devDeploy"
	GateStageDeploy = "stageDeploy"
	GateProdDeploy  = "prodDeploy"
)

var deployGates = map[string]domain.EnvironmentType{
	GateDevDeploy:   domain.EnvDev,
	GateStageDeploy: domain.EnvStage,
	GateProdDeploy:  domain.EnvProd,
}

// FindByGate returns the step state of exec matching gate, scanning in
// document order. For the performance gate the last matching step wins,
// since performance results may be spread across several steps.
func FindByGate(exec domain.Execution, gate string) (domain.StepState, bool) {
	if gate == GatePerformance {
		var found domain.StepState
		ok := false
		for _, s := range exec.StepStates {
			if s.Action.IsPerformanceTest() {
				found, ok = s, true
			}
		}
		return found, ok
	}
	for _, s := range exec.StepStates {
		if gateMatches(s.Action, gate) {
			return s, true
		}
	}
	return domain.StepState{}, false
}

func gateMatches(a domain.StepAction, gate string) bool {
	if gate == GateSecurity {
		return a.Kind == domain.ActionSecurityTest
	}
	if env, ok := deployGates[gate]; ok {
		return a.Kind == domain.ActionDeploy && a.Environment == env
	}
	return a.Name == gate
}

// FindCurrentStep returns the step the execution is currently on.
func FindCurrentStep(exec domain.Execution) (domain.StepState, bool) {
	return exec.CurrentStep()
}

// FindWaitingStep returns the step waiting for user input, if any.
func FindWaitingStep(exec domain.Execution) (domain.StepState, bool) {
	return exec.WaitingStep()
}
