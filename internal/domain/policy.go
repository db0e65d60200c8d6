package domain

// Capability names an operation a role may or may not invoke. All role
// checks in the service go through Role.Can; endpoints never re-derive
// role logic locally.
type Capability string

const (
	CapRequestAppointment  Capability = "appointment:request"
	CapClaimAppointment    Capability = "appointment:claim"
	CapCompleteAppointment Capability = "appointment:complete"
	CapBookForClient       Capability = "appointment:book-for-client"
	CapCreateRecord        Capability = "record:create"
	CapViewAllRecords      Capability = "record:view-all"
	CapViewAllPets         Capability = "pet:view-all"
	CapManageUsers         Capability = "user:manage"
	CapViewAuditLog        Capability = "audit:view"
	CapResolvePasswordReqs Capability = "password-request:resolve"
)

// capabilities is the full role → capability matrix.
var capabilities = map[Role]map[Capability]bool{
	RoleClient: {
		CapRequestAppointment: true,
	},
	RoleStaff: {
		CapClaimAppointment:    true,
		CapCompleteAppointment: true,
		CapBookForClient:       true,
		CapCreateRecord:        true,
		CapViewAllRecords:      true,
		CapViewAllPets:         true,
	},
	RoleAdmin: {
		CapClaimAppointment:    true,
		CapCompleteAppointment: true,
		CapBookForClient:       true,
		CapCreateRecord:        true,
		CapViewAllRecords:      true,
		CapViewAllPets:         true,
		CapManageUsers:         true,
		CapViewAuditLog:        true,
		CapResolvePasswordReqs: true,
	},
}

// Can reports whether the role holds the capability.
func (r Role) Can(c Capability) bool {
	return capabilities[r][c]
}

// OverridesClaim reports whether the role may claim an appointment already
// assigned to someone else. First staff claimant wins; admins are exempt.
func (r Role) OverridesClaim() bool {
	return r == RoleAdmin
}
