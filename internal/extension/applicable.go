package extension

// Applicable evaluates the predicate of ext. A panicking predicate counts as
// not applicable.
func Applicable(ext Extension, ic InitContext) bool {
	ok, _ := checkApplicable(ext, ic)
	return ok
}

func checkApplicable(ext Extension, ic InitContext) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = panicError(r)
		}
	}()
	return ext.Applicable(ic), nil
}
