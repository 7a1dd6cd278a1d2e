package errors

// Kind sentinels for errors.Is checks.
var (
	ErrValidation   = &Exception{Kind: KindValidation, StatusCode: statusByKind[KindValidation]}
	ErrUnauthorized = &Exception{Kind: KindUnauthorized, StatusCode: statusByKind[KindUnauthorized]}
	ErrForbidden    = &Exception{Kind: KindForbidden, StatusCode: statusByKind[KindForbidden]}
	ErrNotFound     = &Exception{Kind: KindNotFound, StatusCode: statusByKind[KindNotFound]}
	ErrInvalidState = &Exception{Kind: KindInvalidState, StatusCode: statusByKind[KindInvalidState]}
	ErrDuplicate    = &Exception{Kind: KindDuplicate, StatusCode: statusByKind[KindDuplicate]}
	ErrConflict     = &Exception{Kind: KindConflict, StatusCode: statusByKind[KindConflict]}
)

func Validation(format string, args ...any) *Exception {
	return New(KindValidation, format, args...)
}

func Unauthorized(format string, args ...any) *Exception {
	return New(KindUnauthorized, format, args...)
}

func Forbidden(format string, args ...any) *Exception {
	return New(KindForbidden, format, args...)
}

func NotFound(format string, args ...any) *Exception {
	return New(KindNotFound, format, args...)
}

func InvalidState(format string, args ...any) *Exception {
	return New(KindInvalidState, format, args...)
}

func Duplicate(format string, args ...any) *Exception {
	return New(KindDuplicate, format, args...)
}
