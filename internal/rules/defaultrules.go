package rules

// DefaultRules is the built-in scoring tree, transcribed node-for-node
// from the original's RULES constant in dsl.rs: confirm the candidate
// produced a type at all, confirm both sides agree on pointerness, walk
// pointer depth (re-running on the recursive pointee once both sides are
// confirmed pointers at this level), and otherwise fall through to
// struct-shape and primitive-kind agreement.
var DefaultRules = buildDefaultRules()

func buildDefaultRules() *Rule {
	primitive := &Rule{
		Name:      "primitive-kind",
		Property:  PropCPrimitive,
		Condition: CondBothAgree,
		OnFalse:   F(0, Halt()),
		OnTrue:    T(1, Halt()),
	}

	signIgnored := &Rule{
		Name:      "sign-ignored-primitive-kind",
		Property:  PropSignIgnoredCPrimitive,
		Condition: CondBothAgree,
		OnFalse:   F(0, Halt()),
		OnTrue:    T(1, Continue(primitive)),
	}

	isCStruct := &Rule{
		Name:      "is-c-struct",
		Property:  PropIsCStruct,
		Condition: CondBothAgree,
		OnFalse:   F(0, Halt()),
		OnTrue:    T(1, Continue(signIgnored)),
	}

	// Reached only once both sides already agreed on C-pointerness and
	// pointer depth: both pointers re-run on the recursive pointee, both
	// non-pointers fall through to the struct/primitive checks.
	isPointerShape := &Rule{
		Name:      "is-c-pointer-shape",
		Property:  PropIsCPointer,
		Condition: CondBothAreTrue,
		OnTrue:    T(0, ReRunOnRecursivePointee()),
		OnFalse:   F(0, Continue(isCStruct)),
	}

	pointerLevel := &Rule{
		Name:      "pointer-level",
		Property:  PropCPointerLevel,
		Condition: CondBothAgree,
		OnFalse:   F(0, Halt()),
		OnTrue:    T(1, Continue(isPointerShape)),
	}

	isCPointerAgree := &Rule{
		Name:      "is-c-pointer-agree",
		Property:  PropIsCPointer,
		Condition: CondBothAgree,
		OnFalse:   F(0, Halt()),
		OnTrue:    T(1, Continue(pointerLevel)),
	}

	root := &Rule{
		Name:      "is-defined",
		Property:  PropIsDefined,
		Condition: CondBothAgree,
		OnFalse:   F(0, Halt()),
		OnTrue:    T(1, Continue(isCPointerAgree)),
	}
	return root
}
