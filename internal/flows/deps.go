package flows

// Deps groups flow dependency sets. The root engine builds this once at Build time and
// delegates request methods to the matching flow implementation.
type Deps struct {
	Authenticate AuthenticateDeps
}
