package store

// CheckLimit verifies that adding additional entities to a scope currently
// holding current of them stays at or under ceiling. It is a pure check;
// the caller performs the insert immediately afterwards inside the same
// transaction to keep the check-to-insert window minimal.
//
// Returns a *LimitExceededError carrying the ceiling and current count when
// the addition would exceed the ceiling.
func CheckLimit(resource string, current, additional, ceiling int) error {
	if current+additional > ceiling {
		return &LimitExceededError{
			Resource: resource,
			Limit:    ceiling,
			Current:  current,
		}
	}
	return nil
}
