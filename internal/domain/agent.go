package domain

import "time"

// AgentRole enumerates positions in the escalation chain.
type AgentRole string

const (
	RoleAgent    AgentRole = "AGENT"
	RoleTeamLead AgentRole = "TEAM_LEAD"
	RoleManager  AgentRole = "MANAGER"
	RoleDirector AgentRole = "DIRECTOR"
)

// ExperienceLevel orders agent seniority, JUNIOR < SENIOR < EXPERT.
type ExperienceLevel string

const (
	ExperienceJunior ExperienceLevel = "JUNIOR"
	ExperienceSenior ExperienceLevel = "SENIOR"
	ExperienceExpert ExperienceLevel = "EXPERT"
)

var experienceRanks = map[ExperienceLevel]int{
	ExperienceJunior: 0,
	ExperienceSenior: 1,
	ExperienceExpert: 2,
}

// Rank returns the ordinal seniority, or -1 for unknown values.
func (e ExperienceLevel) Rank() int {
	if rank, ok := experienceRanks[e]; ok {
		return rank
	}
	return -1
}

// Agent models a human responder. Agent records are owned externally; the
// core reads them and only writes CurrentEscalatedCases.
type Agent struct {
	ID                     string
	Name                   string
	Email                  string
	Skills                 []string
	ExperienceLevel        ExperienceLevel
	MaxCases               int
	AvailableForAssignment bool
	AvailableForEscalation bool
	Role                   AgentRole
	CurrentEscalatedCases  int
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// HasSkill reports whether the agent carries the given skill tag.
func (a *Agent) HasSkill(tag string) bool {
	for _, skill := range a.Skills {
		if skill == tag {
			return true
		}
	}
	return false
}
