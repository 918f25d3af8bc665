package httpapi

import (
	"errors"
	"fmt"

	"gemini-gateway/pkg/apierrors"
	"gemini-gateway/pkg/httpapi/types"
)

// HandleError converts a dispatch/validation error into an OpenAI error
// envelope, adapted from a provider StatusCode switch to errors.As dispatch
// over this gateway's apierrors taxonomy, mirroring the final isinstance
// cascade in original_source/src/main.py's process_chat_completion.
func HandleError(err error) *types.ErrorResponse {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.ToErrorResponse()
	}

	var badRequest *apierrors.BadRequest
	if errors.As(err, &badRequest) {
		return types.NewInvalidRequestError(badRequest.Message, "", types.CodeInvalidValue)
	}

	var unauthorized *apierrors.Unauthorized
	if errors.As(err, &unauthorized) {
		return types.NewErrorResponse(unauthorized.Message, types.ErrorTypeAuthentication, "", "authentication_failed")
	}

	var forbidden *apierrors.Forbidden
	if errors.As(err, &forbidden) {
		return types.NewErrorResponse(forbidden.Message, types.ErrorTypePermissionDenied, "", "permission_denied")
	}

	var poolEmpty *apierrors.PoolEmpty
	if errors.As(err, &poolEmpty) {
		return types.NewServiceUnavailableError("No API keys are currently available; all are cooling down or have failed.")
	}

	var permanent *apierrors.UpstreamPermanent
	if errors.As(err, &permanent) {
		switch permanent.StatusCode {
		case 401:
			return types.NewErrorResponse(permanent.Error(), types.ErrorTypeAuthentication, "", "authentication_failed")
		case 403:
			return types.NewErrorResponse(permanent.Error(), types.ErrorTypePermissionDenied, "", "permission_denied")
		default:
			return types.NewInvalidRequestError(permanent.Error(), "", types.CodeInvalidValue)
		}
	}

	var quota *apierrors.UpstreamQuota
	if errors.As(err, &quota) {
		return types.NewErrorResponse(quota.Error(), types.ErrorTypeRateLimitExceeded, "", types.CodeUpstreamQuota)
	}

	var transient *apierrors.UpstreamTransient
	if errors.As(err, &transient) {
		return types.NewBadGatewayError(fmt.Sprintf("upstream request failed: %v", transient.Error()))
	}

	var disconnect *apierrors.ClientDisconnect
	if errors.As(err, &disconnect) {
		// Nothing useful to write back; the client is already gone.
		return types.NewErrorResponse("client disconnected", types.ErrorTypeServerError, "", types.CodeInternalError)
	}

	return types.NewServerError("An internal error occurred. Please try again later.")
}
