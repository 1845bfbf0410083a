package nextver

// Resolve determines the next version from the latest tag, the commit message
// and the ref name. A nil or malformed tag means no usable tag: the current
// version is v0.0.0 and the next version is v0.0.1 regardless of message and
// ref.
//
// When a release branch names an invalid version the returned Result is still
// usable (next version equals the current version, reason default) and the
// error wraps ErrInvalidReleaseOverride.
func Resolve(tag *string, commitMessage, refName string) (Result, error) {
	return ResolveWithRules(DefaultRules, tag, commitMessage, refName)
}

// ResolveWithRules is Resolve with a caller supplied rule table
func ResolveWithRules(rules []Rule, tag *string, commitMessage, refName string) (Result, error) {
	if tag == nil {
		return defaultResult(), nil
	}

	current, err := ParseTag(*tag)
	if err != nil {
		return defaultResult(), nil
	}

	result := Result{
		CurrentVersion: FormatVersion(current),
	}

	decision, err := Classify(rules, current, commitMessage, refName)
	if err != nil {
		result.NextVersion = result.CurrentVersion
		result.Reason = ReasonDefault
		return result, err
	}

	result.Reason = decision.Reason
	if decision.Override != nil {
		result.NextVersion = FormatVersion(*decision.Override)
		return result, nil
	}

	result.Increment = decision.Increment
	result.NextVersion = FormatVersion(bump(current, decision.Increment))

	return result, nil
}

func defaultResult() Result {
	return Result{
		CurrentVersion: FormatVersion(BaselineVersion),
		NextVersion:    FormatVersion(bump(BaselineVersion, IncrementPatch)),
		Increment:      IncrementPatch,
		Reason:         ReasonDefault,
	}
}
