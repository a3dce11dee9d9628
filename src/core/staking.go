package main

// Staking ledger: the only code that mutates user balance fields. The three
// settlement functions are each invoked exactly once per report, at the
// report's staking or terminal transition; the lifecycle's status guard makes
// double settlement structurally impossible.

// deductStake locks the stake out of the user's balance.
// Precondition: user.TokenBalance >= amount, checked by the caller.
func deductStake(user *User, amount uint64) {
	user.TokenBalance -= amount
	user.StakesActive += amount
}

// settleApproved returns the stake and credits the reward
func settleApproved(user *User, stake, reward uint64) {
	user.TokenBalance += stake + reward
	user.StakesActive -= stake
	user.RewardsEarned += reward
}

// settleRejected forfeits the stake; the balance is unchanged
func settleRejected(user *User, stake uint64) {
	user.StakesActive -= stake
	user.StakesLost += stake
}

// TransferTokens moves tokens between two user accounts. The recipient is
// created with a zero-initialized account when unknown, so a transfer can
// fund a user who has never submitted a report.
func (n *WhisprNode) TransferTokens(caller, to Principal, amount uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	caller, err := n.ensureAuthenticated(caller)
	if err != nil {
		return err
	}

	if amount == 0 {
		return errInvalidTransfer("transfer amount must be greater than zero")
	}
	if caller == to {
		return errInvalidTransfer("cannot transfer tokens to yourself")
	}
	if to == AnonymousPrincipal {
		return errInvalidTransfer("cannot transfer tokens to the anonymous identity")
	}

	sender, ok := n.store.GetUser(caller)
	if !ok {
		return errInsufficientBalance("insufficient token balance for transfer")
	}
	if sender.TokenBalance < amount {
		return errInsufficientBalance("insufficient token balance for transfer")
	}

	recipient, ok := n.store.GetUser(to)
	if !ok {
		recipient = User{ID: to}
	}

	sender.TokenBalance -= amount
	recipient.TokenBalance += amount

	n.store.CreateOrUpdateUser(sender)
	n.store.CreateOrUpdateUser(recipient)

	tokensTransferredTotal.Add(float64(amount))
	logger.Info("Transferred tokens", "from", caller, "to", to, "amount", amount)
	return nil
}

// AddTokens grants tokens to any user account, creating it when unknown.
// Authorities only.
func (n *WhisprNode) AddTokens(caller, userID Principal, amount uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, err := n.ensureAuthority(caller); err != nil {
		return err
	}
	if amount == 0 {
		return errInvalidTransfer("grant amount must be greater than zero")
	}
	if userID == AnonymousPrincipal {
		return errInvalidTransfer("cannot grant tokens to the anonymous identity")
	}

	user, ok := n.store.GetUser(userID)
	if !ok {
		user = User{ID: userID}
	}
	user.TokenBalance += amount
	n.store.CreateOrUpdateUser(user)

	logger.Info("Granted tokens", "authority", caller, "user", userID, "amount", amount)
	return nil
}

// GetUserBalance returns the caller's token balance; anonymous or unknown
// callers get 0 rather than an error.
func (n *WhisprNode) GetUserBalance(caller Principal) uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	if caller == AnonymousPrincipal {
		return 0
	}
	user, ok := n.store.GetUser(caller)
	if !ok {
		return 0
	}
	return user.TokenBalance
}

// GetUserProfile returns the caller's account, if any
func (n *WhisprNode) GetUserProfile(caller Principal) (User, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if caller == AnonymousPrincipal {
		return User{}, false
	}
	return n.store.GetUser(caller)
}
