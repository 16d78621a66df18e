package session

import (
	"sort"
	"strings"
)

// EnvVar is one environment entry of a capability.
type EnvVar struct {
	Name        string
	Value       string
	Description string
}

// Capability is a named external API the model may call from generated code.
type Capability struct {
	Name string
	Env  []EnvVar
	Desc string
}

// Registrar receives the environment bindings of a capability. code.Executor
// satisfies it.
type Registrar interface {
	SetEnv(name, value, description string)
}

// Headings are the localized section titles used by AssemblePrompt.
type Headings struct {
	Env         string
	Description string
}

// AssemblePrompt appends one section per capability to base and registers
// each non-empty environment value with reg. Capabilities and their variables
// are processed in name order. A variable whose trimmed value is empty is
// neither registered nor listed. With no capabilities the base prompt is
// returned unchanged.
func AssemblePrompt(base string, caps []Capability, reg Registrar, h Headings) string {
	if len(caps) == 0 {
		return base
	}

	sorted := append([]Capability(nil), caps...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	lines := []string{base}
	for _, c := range sorted {
		lines = append(lines, "## "+c.Name+" API")

		if len(c.Env) > 0 {
			lines = append(lines, "### "+h.Env)

			env := append([]EnvVar(nil), c.Env...)
			sort.SliceStable(env, func(i, j int) bool { return env[i].Name < env[j].Name })
			for _, v := range env {
				value := strings.TrimSpace(v.Value)
				if value == "" {
					continue
				}
				lines = append(lines, "- "+v.Name+": "+v.Description)
				if reg != nil {
					reg.SetEnv(v.Name, value, v.Description)
				}
			}
		}

		if c.Desc != "" {
			lines = append(lines, "### API "+h.Description+"\n"+c.Desc)
		}
	}
	return strings.Join(lines, "\n")
}
