package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

const CodeSuccess = "S000"

// Response envelope, every API response has this shape
type Response struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// APIError is what client gets when request failed
type APIError struct {
	Status  int
	Code    string
	Message string
}

var (
	ErrInvalidInput = APIError{http.StatusBadRequest, "C001", "Invalid input"}
	ErrInternal     = APIError{http.StatusInternalServerError, "C002", "Internal server error"}

	ErrExpiredToken        = APIError{http.StatusUnauthorized, "A002", "Token expired"}
	ErrUnauthorized        = APIError{http.StatusUnauthorized, "A005", "Authentication required"}
	ErrBlacklistedToken    = APIError{http.StatusUnauthorized, "A006", "Token is logged out"}
	ErrInvalidRefreshToken = APIError{http.StatusUnauthorized, "A007", "Invalid refresh token"}
	ErrInvalidCredentials  = APIError{http.StatusUnauthorized, "A008", "Invalid email or password"}

	ErrDuplicateEmail = APIError{http.StatusConflict, "U001", "Email already in use"}
	ErrUserNotFound   = APIError{http.StatusNotFound, "U002", "User not found"}
)

type Struct any

func JSON(w http.ResponseWriter, data any) {
	JSONWithStatus(w, data, http.StatusOK)
}

// JSONWithStatus sends data in success envelope and enforces status code
func JSONWithStatus(w http.ResponseWriter, data any, status int) {
	jsonWithStatus(w, Response{Code: CodeSuccess, Message: "OK", Data: data}, status)
}

// Render ServiceError
func ServiceError(w http.ResponseWriter, e APIError) {
	jsonWithStatus(w, Response{Code: e.Code, Message: e.Message}, e.Status)
}

// Render json DecodeError
func DecodeError(w http.ResponseWriter, err error) {
	response := Response{Code: ErrInvalidInput.Code}

	// Try to provide more specific error message based on error type
	switch err := err.(type) {
	case *json.UnmarshalTypeError:
		response.Message = fmt.Sprintf("Invalid data type for field '%s'", err.Field)
	default:
		response.Message = fmt.Sprintf("Failed to parse JSON: %s", err.Error())
	}

	jsonWithStatus(w, response, ErrInvalidInput.Status)
}

// Render ValidationErrors, field messages are put in data
func ValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	fields := make(map[string]string, len(errs))

	// Create user-friendly error messages based on validation tag
	for _, fieldError := range errs {
		var message string
		switch fieldError.Tag() {
		case "required":
			message = "This field is required"
		case "min":
			message = fmt.Sprintf("Value is too short (minimum %s)", fieldError.Param())
		case "max":
			message = fmt.Sprintf("Value is too long (maximum %s)", fieldError.Param())
		case "email":
			message = "Invalid email format"
		case "password":
			message = "Password must be 8-20 characters long and contain lowercase and uppercase letters, a digit and one of @$!%*?&"
		default:
			message = "Invalid value"
		}

		fields[fieldError.Field()] = message
	}

	jsonWithStatus(w, Response{Code: ErrInvalidInput.Code, Message: "Request validation failed", Data: fields}, ErrInvalidInput.Status)
}

// BindAndValidate decodes JSON request body into type T and validates it using struct tags.
// Returns the decoded value and writes appropriate error responses for decoding or validation failures.
func BindAndValidate[T Struct](w http.ResponseWriter, r *http.Request) (T, error) {
	var value T

	err := json.NewDecoder(r.Body).Decode(&value)
	if err != nil {
		DecodeError(w, err)
		return value, err
	}

	err = validate.Struct(value)
	if err != nil {
		// pretty sure cast will be ok cause expecting T is valid struct
		errs := err.(validator.ValidationErrors)
		ValidationErrors(w, errs)
		return value, err
	}

	return value, nil
}

// jsonWithStatus sends data as json and enforces status code
func jsonWithStatus(w http.ResponseWriter, data any, code int) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)

	if err := enc.Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}
