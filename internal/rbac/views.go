package rbac

type View string

const (
	ViewLanding        View = "landing"
	ViewQualifications View = "qualifications"
	ViewPositions      View = "positions"
	ViewTenders        View = "tenders"
	ViewCapture        View = "capture"
	ViewUserProfiles   View = "user-profiles"
)

var viewCapability = map[View]Capability{
	ViewLanding:        CanViewAllCVs,
	ViewQualifications: CanManageQualifications,
	ViewPositions:      CanManagePositions,
	ViewTenders:        CanManageTenders,
	ViewCapture:        CanCaptureRecords,
	ViewUserProfiles:   CanAccessUserProfiles,
}

// CanAccessView reports whether role may open the named screen. Unknown views
// are denied.
func CanAccessView(role Role, view View) bool {
	c, ok := viewCapability[view]
	if !ok {
		return false
	}
	return Can(role, c)
}

// KnownView reports whether view is in the table.
func KnownView(view View) bool {
	_, ok := viewCapability[view]
	return ok
}
