package main

// Access-control predicates. All run under the node lock and gate every
// mutation; read paths that must not leak existence use canViewReport and
// return empty results instead of erroring.

// ensureAuthenticated rejects the anonymous sentinel identity
func (n *WhisprNode) ensureAuthenticated(caller Principal) (Principal, error) {
	if caller == AnonymousPrincipal {
		return AnonymousPrincipal, errUnauthorized("anonymous callers are not allowed")
	}
	return caller, nil
}

// ensureAuthority rejects anonymous callers and non-authorities
func (n *WhisprNode) ensureAuthority(caller Principal) (Principal, error) {
	caller, err := n.ensureAuthenticated(caller)
	if err != nil {
		return AnonymousPrincipal, err
	}
	if !n.store.IsAuthority(caller) {
		return AnonymousPrincipal, errForbidden("caller is not an authorized authority")
	}
	return caller, nil
}

// canViewReport is true iff the caller submitted the report or is an authority
func (n *WhisprNode) canViewReport(caller Principal, report Report) bool {
	if caller == AnonymousPrincipal {
		return false
	}
	return report.SubmitterID == caller || n.store.IsAuthority(caller)
}
