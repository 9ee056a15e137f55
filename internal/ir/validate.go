package ir

import (
	"errors"
	"fmt"
)

// Validate checks module invariants. Returns an error joining every
// violation found.
func Validate(m *Module) error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, f := range m.Funcs {
		if f == nil {
			continue
		}
		if err := ValidateFunc(f); err != nil {
			errs = append(errs, fmt.Errorf("function %s: %w", f.Name, err))
		}
	}
	return errors.Join(errs...)
}

// ValidateFunc checks the SSA invariants of a single function.
func ValidateFunc(f *Function) error {
	var errs []error

	if err := validateBlocksTerminated(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateBranches(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateUseLists(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateAccessPairs(f); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func validateBlocksTerminated(f *Function) error {
	var errs []error
	for _, b := range f.Blocks() {
		if !b.Terminated() {
			errs = append(errs, fmt.Errorf("block %s: not terminated", b.Name()))
			continue
		}
		for i, in := range b.Instrs() {
			if in.IsTerminator() && i != len(b.Instrs())-1 {
				errs = append(errs, fmt.Errorf("block %s: terminator %s mid-block", b.Name(), in.Kind()))
			}
		}
	}
	return errors.Join(errs...)
}

func validateBranches(f *Function) error {
	var errs []error
	for _, b := range f.Blocks() {
		term := b.Terminator()
		if term == nil {
			continue
		}
		for _, t := range term.Targets() {
			if t.fn != f {
				errs = append(errs, fmt.Errorf("block %s: branch target %s outside function", b.Name(), t.Name()))
			}
			found := false
			for _, p := range t.Preds() {
				if p == b {
					found = true
					break
				}
			}
			if !found {
				errs = append(errs, fmt.Errorf("block %s: missing from predecessor list of %s", b.Name(), t.Name()))
			}
		}
		if term.Kind() == InstrBr {
			target := term.Targets()[0]
			if term.NumOperands() != len(target.Args()) {
				errs = append(errs, fmt.Errorf("block %s: branch carries %d args, target %s expects %d",
					b.Name(), term.NumOperands(), target.Name(), len(target.Args())))
			}
		}
	}
	return errors.Join(errs...)
}

func validateUseLists(f *Function) error {
	var errs []error
	for _, b := range f.Blocks() {
		for _, in := range b.Instrs() {
			for i := 0; i < in.NumOperands(); i++ {
				op := in.Operand(i)
				v := op.Value()
				if v == nil {
					errs = append(errs, fmt.Errorf("block %s: %s operand %d detached", b.Name(), in.Kind(), i))
					continue
				}
				found := false
				for _, u := range v.Uses() {
					if u == op {
						found = true
						break
					}
				}
				if !found {
					errs = append(errs, fmt.Errorf("block %s: %s operand %d missing from use list", b.Name(), in.Kind(), i))
				}
			}
			if res := in.Result(); res != nil {
				for _, u := range res.Uses() {
					if u.Value() != res {
						errs = append(errs, fmt.Errorf("block %s: stale use of %s result", b.Name(), in.Kind()))
					}
				}
			}
		}
	}
	return errors.Join(errs...)
}

func validateAccessPairs(f *Function) error {
	var errs []error
	for _, b := range f.Blocks() {
		for _, in := range b.Instrs() {
			if in.Kind() != InstrEndAccess || in.Unpaired() {
				continue
			}
			begin := in.BeginAccess()
			if begin.Kind() != InstrBeginAccess {
				errs = append(errs, fmt.Errorf("block %s: end_access paired with %s", b.Name(), begin.Kind()))
				continue
			}
			if begin.Parent() == nil || begin.Parent().fn != f {
				errs = append(errs, fmt.Errorf("block %s: end_access paired outside function", b.Name()))
			}
		}
	}
	return errors.Join(errs...)
}
