package errors_test

import (
	"errors"
	"strings"
	"testing"

	biocatErrors "github.com/agrisense/biocat/pkg/errors"
)

func TestTypedErrors_MatchWithAs(t *testing.T) {
	err := biocatErrors.NewValueError("ComputeAnchors", "too few values")
	var ve *biocatErrors.ValueError
	if !errors.As(err, &ve) {
		t.Fatal("expected errors.As to find ValueError")
	}
	if ve.Op != "ComputeAnchors" {
		t.Errorf("expected op ComputeAnchors, got %s", ve.Op)
	}

	err = biocatErrors.NewDimensionError("MSE", 10, 8, 0)
	var de *biocatErrors.DimensionError
	if !errors.As(err, &de) {
		t.Fatal("expected errors.As to find DimensionError")
	}
	if de.Expected != 10 || de.Got != 8 {
		t.Errorf("dimension fields lost: %+v", de)
	}

	err = biocatErrors.NewNotFittedError("GBTRegressor", "Predict")
	var nfe *biocatErrors.NotFittedError
	if !errors.As(err, &nfe) {
		t.Fatal("expected errors.As to find NotFittedError")
	}

	err = biocatErrors.NewValidationError("gaussian sigma", "must be > 0", -1.0)
	var vde *biocatErrors.ValidationError
	if !errors.As(err, &vde) {
		t.Fatal("expected errors.As to find ValidationError")
	}
}

func TestModelError_UnwrapsCause(t *testing.T) {
	cause := biocatErrors.ErrDegenerateTarget
	err := biocatErrors.NewModelError("GBTClassifier", "fitting failed", cause)

	if !errors.Is(err, biocatErrors.ErrDegenerateTarget) {
		t.Error("expected errors.Is to reach the wrapped sentinel")
	}
	var me *biocatErrors.ModelError
	if !errors.As(err, &me) {
		t.Fatal("expected errors.As to find ModelError")
	}
	if me.Cause != cause {
		t.Error("cause not preserved")
	}
}

func TestErrorStrings_CarryPrefix(t *testing.T) {
	errs := []error{
		biocatErrors.NewValueError("op", "msg"),
		biocatErrors.NewDimensionError("op", 1, 2, 0),
		biocatErrors.NewNotFittedError("m", "Predict"),
		biocatErrors.NewValidationError("f", "msg", 0),
		biocatErrors.NewModelError("m", "msg", nil),
	}
	for _, err := range errs {
		if !strings.HasPrefix(err.Error(), "biocat: ") {
			t.Errorf("missing prefix: %s", err.Error())
		}
	}
}

func TestRecover_ConvertsPanic(t *testing.T) {
	run := func() (err error) {
		defer biocatErrors.Recover(&err, "Model.Fit")
		panic("index out of range")
	}

	err := run()
	if err == nil {
		t.Fatal("expected panic to surface as error")
	}
	if !strings.Contains(err.Error(), "Model.Fit") {
		t.Errorf("expected operation name in error, got %s", err.Error())
	}
}

func TestRecover_NoPanicLeavesErrorNil(t *testing.T) {
	run := func() (err error) {
		defer biocatErrors.Recover(&err, "Model.Fit")
		return nil
	}
	if err := run(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}
