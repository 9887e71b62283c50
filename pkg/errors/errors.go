package errors

import (
	"github.com/giantswarm/microerror"
)

var InvalidConfigError = &microerror.Error{
	Kind: "InvalidConfigError",
}

// IsInvalidConfig asserts InvalidConfigError.
func IsInvalidConfig(err error) bool {
	return microerror.Cause(err) == InvalidConfigError
}

var ResolutionFailedError = &microerror.Error{
	Kind: "ResolutionFailedError",
}

// IsResolutionFailed asserts ResolutionFailedError.
func IsResolutionFailed(err error) bool {
	return microerror.Cause(err) == ResolutionFailedError
}

var ProvisioningFailedError = &microerror.Error{
	Kind: "ProvisioningFailedError",
}

// IsProvisioningFailed asserts ProvisioningFailedError.
func IsProvisioningFailed(err error) bool {
	return microerror.Cause(err) == ProvisioningFailedError
}

var TaggingFailedError = &microerror.Error{
	Kind: "TaggingFailedError",
}

// IsTaggingFailed asserts TaggingFailedError.
func IsTaggingFailed(err error) bool {
	return microerror.Cause(err) == TaggingFailedError
}
