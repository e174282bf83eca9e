package yamlutil

// Policy selects what Load does with malformed input.
type Policy int

const (
	// FailClosed returns the DataFormatError to the caller.
	FailClosed Policy = iota
	// FailOpen reports the error and continues with an empty mapping.
	FailOpen
)

func (p Policy) String() string {
	switch p {
	case FailOpen:
		return "fail-open"
	default:
		return "fail-closed"
	}
}

// Reporter receives errors that a FailOpen load recovered from.
type Reporter func(err error)

// Load wraps SafeLoad with an explicit recovery policy. With FailOpen the
// error goes to report (when set) and an empty, non-nil map is returned.
func Load(text string, policy Policy, report Reporter) (map[string]any, error) {
	res, err := SafeLoad(text)
	if err == nil {
		return res.Data, nil
	}
	if policy == FailClosed {
		return nil, err
	}
	if report != nil {
		report(err)
	}
	return map[string]any{}, nil
}
