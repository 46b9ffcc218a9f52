package domain

// ActionKind is the decoded kind of a step state's action.
type ActionKind uint8

const (
	ActionOther ActionKind = iota
	ActionApproval
	ActionManaged
	ActionSchedule
	ActionDeploy
	ActionSecurityTest
	ActionLoadTest
	ActionAssetsTest
	ActionReportPerformanceTest
)

var actionNames = map[string]ActionKind{
	"approval":              ActionApproval,
	"managed":               ActionManaged,
	"schedule":              ActionSchedule,
	"deploy":                ActionDeploy,
	"securityTest":          ActionSecurityTest,
	"loadTest":              ActionLoadTest,
	"assetsTest":            ActionAssetsTest,
	"reportPerformanceTest": ActionReportPerformanceTest,
}

// EnvironmentType is the tier a deploy step targets.
type EnvironmentType string

const (
	EnvDev   EnvironmentType = "dev"
	EnvStage EnvironmentType = "stage"
	EnvProd  EnvironmentType = "prod"
)

// StepAction is the action a step state performs. Environment is only set
// for ActionDeploy. Name keeps the action string as the API reported it.
type StepAction struct {
	Kind        ActionKind
	Name        string
	Environment EnvironmentType
}

// ParseStepAction decodes the raw action and environment type fields of a step state.
func ParseStepAction(action string, environmentType string) StepAction {
	kind, ok := actionNames[action]
	if !ok {
		kind = ActionOther
	}
	a := StepAction{Kind: kind, Name: action}
	if kind == ActionDeploy {
		a.Environment = EnvironmentType(environmentType)
	}
	return a
}

// IsPerformanceTest reports whether the action reports performance results.
func (a StepAction) IsPerformanceTest() bool {
	switch a.Kind {
	case ActionLoadTest, ActionAssetsTest, ActionReportPerformanceTest:
		return true
	}
	return false
}

func (a StepAction) String() string {
	if a.Kind == ActionDeploy && a.Environment != "" {
		return a.Name + "(" + string(a.Environment) + ")"
	}
	return a.Name
}
