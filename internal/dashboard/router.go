package dashboard

// Route binds a URL path to a view template and the controller that owns it.
type Route struct {
	Path       string
	Template   string
	Controller string
	Title      string
}

// Routes is the static route table of the dashboard.
var Routes = []Route{
	{Path: "/", Template: "dashboard", Controller: "DashboardController", Title: "Dashboard"},
	{Path: "/containers", Template: "containers", Controller: "ContainerController", Title: "Containers"},
	{Path: "/images", Template: "images", Controller: "ImagesController", Title: "Images"},
}

// Resolve looks up the route for path. Unmatched paths are left to the
// framework default.
func Resolve(path string) (Route, bool) {
	for _, r := range Routes {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}
