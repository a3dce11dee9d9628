package main

// Authority registration and management. New authorities are created by
// existing ones; the bootstrap path is InitializeSystem, which only works
// while no authority exists.

// AddAuthority registers a new authority. Existing authorities only.
func (n *WhisprNode) AddAuthority(caller, id Principal) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, err := n.ensureAuthority(caller); err != nil {
		return err
	}
	if id == AnonymousPrincipal {
		return errValidation("cannot register the anonymous identity as an authority")
	}
	if n.store.IsAuthority(id) {
		return errValidation("principal is already an authority")
	}

	n.store.AddAuthority(Authority{ID: id, ReportsReviewed: []uint64{}})
	authoritiesGauge.Set(float64(n.store.AuthorityCount()))

	logger.Info("Authority added", "authority", id, "addedBy", caller)
	return nil
}

// RemoveAuthority deletes an authority registration. Self-removal is not
// permitted, so the registry can never lose its last reviewer by accident.
func (n *WhisprNode) RemoveAuthority(caller, id Principal) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	callerID, err := n.ensureAuthority(caller)
	if err != nil {
		return err
	}
	if id == callerID {
		return errForbidden("cannot remove yourself as authority")
	}
	if err := n.store.RemoveAuthority(id); err != nil {
		return err
	}
	authoritiesGauge.Set(float64(n.store.AuthorityCount()))

	logger.Info("Authority removed", "authority", id, "removedBy", callerID)
	return nil
}

// GetAllAuthorities lists every authority. Authorities only.
func (n *WhisprNode) GetAllAuthorities(caller Principal) ([]Authority, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, err := n.ensureAuthority(caller); err != nil {
		return nil, err
	}
	return n.store.GetAllAuthorities(), nil
}

// IsAuthority reports whether the caller holds the authority role
func (n *WhisprNode) IsAuthority(caller Principal) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if caller == AnonymousPrincipal {
		return false
	}
	return n.store.IsAuthority(caller)
}

// InitializeSystem bootstraps the first authority. The first authenticated
// caller becomes an authority; once any authority exists the registry is
// initialized and this fails.
func (n *WhisprNode) InitializeSystem(caller Principal) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	caller, err := n.ensureAuthenticated(caller)
	if err != nil {
		return err
	}
	if n.store.AuthorityCount() > 0 {
		return errForbidden("system already initialized")
	}

	n.store.AddAuthority(Authority{ID: caller, ReportsReviewed: []uint64{}})
	authoritiesGauge.Set(float64(n.store.AuthorityCount()))

	logger.Info("System initialized with first authority", "authority", caller)
	return nil
}
