package errors

import (
	stderrors "errors"

	"github.com/aws/smithy-go"
)

// IsAlreadyExists asserts the IAM "already exists" conflict responses that
// idempotent provisioning treats as success.
func IsAlreadyExists(err error) bool {
	var apiError smithy.APIError
	if stderrors.As(err, &apiError) {
		switch apiError.ErrorCode() {
		case "EntityAlreadyExists", "EntityAlreadyExistsException":
			return true
		}
	}

	return false
}
