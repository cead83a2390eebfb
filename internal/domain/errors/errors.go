package errors

import (
	"fmt"
)

type ErrMissingRequiredField struct {
	FieldName string
}

func (e *ErrMissingRequiredField) Error() string {
	return fmt.Sprintf("отсутствует обязательное поле: %s", e.FieldName)
}

func (e *ErrMissingRequiredField) Is(target error) bool {
	_, ok := target.(*ErrMissingRequiredField)
	return ok
}

type ErrEntityNotFound struct {
	Ref string
}

func (e *ErrEntityNotFound) Error() string {
	return fmt.Sprintf("cannot find any entity corresponding to %q", e.Ref)
}

func (e *ErrEntityNotFound) Is(target error) bool {
	_, ok := target.(*ErrEntityNotFound)
	return ok
}

// ErrNotAGroup is returned when a group reference resolves to a user.
type ErrNotAGroup struct {
	Ref string
}

func (e *ErrNotAGroup) Error() string {
	return fmt.Sprintf("%s resolved to a USER.", e.Ref)
}

func (e *ErrNotAGroup) Is(target error) bool {
	_, ok := target.(*ErrNotAGroup)
	return ok
}

type ErrResolve struct {
	Ref   string
	Cause error
}

func (e *ErrResolve) Error() string {
	return fmt.Sprintf("could not resolve %q: %v", e.Ref, e.Cause)
}

func (e *ErrResolve) Unwrap() error {
	return e.Cause
}

type ErrOperatorNotRegistered struct{}

func (e *ErrOperatorNotRegistered) Error() string {
	return "чат оператора не зарегистрирован, отправьте боту /start"
}

func (e *ErrOperatorNotRegistered) Is(target error) bool {
	_, ok := target.(*ErrOperatorNotRegistered)
	return ok
}

type ErrSendFailed struct {
	ChatID int64
	Cause  error
}

func (e *ErrSendFailed) Error() string {
	return fmt.Sprintf("ошибка при отправке сообщения в чат %d: %v", e.ChatID, e.Cause)
}

func (e *ErrSendFailed) Unwrap() error {
	return e.Cause
}

type ErrInvalidArgument struct {
	Message string
}

func (e *ErrInvalidArgument) Error() string {
	return fmt.Sprintf("некорректный аргумент: %s", e.Message)
}

type ErrStoreRead struct {
	Backend string
	Cause   error
}

func (e *ErrStoreRead) Error() string {
	return fmt.Sprintf("ошибка при чтении настроек (%s): %v", e.Backend, e.Cause)
}

func (e *ErrStoreRead) Unwrap() error {
	return e.Cause
}

type ErrStoreWrite struct {
	Backend string
	Cause   error
}

func (e *ErrStoreWrite) Error() string {
	return fmt.Sprintf("ошибка при сохранении настроек (%s): %v", e.Backend, e.Cause)
}

func (e *ErrStoreWrite) Unwrap() error {
	return e.Cause
}

// ErrSettingsNotFound means the backend holds no record yet.
type ErrSettingsNotFound struct{}

func (e *ErrSettingsNotFound) Error() string {
	return "сохраненные настройки не найдены"
}

func (e *ErrSettingsNotFound) Is(target error) bool {
	_, ok := target.(*ErrSettingsNotFound)
	return ok
}

type ErrUnknownStoreBackend struct {
	Backend string
}

func (e *ErrUnknownStoreBackend) Error() string {
	return fmt.Sprintf("неизвестный тип хранилища настроек: %s", e.Backend)
}

type ErrUnknownEventTransport struct {
	Transport string
}

func (e *ErrUnknownEventTransport) Error() string {
	return fmt.Sprintf("неизвестный транспорт событий: %s", e.Transport)
}

type ErrBuildSQLQuery struct {
	Operation string
	Cause     error
}

func (e *ErrBuildSQLQuery) Error() string {
	return fmt.Sprintf("ошибка при построении SQL запроса для %s: %v", e.Operation, e.Cause)
}

func (e *ErrBuildSQLQuery) Unwrap() error {
	return e.Cause
}

type ErrSQLExecution struct {
	Operation string
	Cause     error
}

func (e *ErrSQLExecution) Error() string {
	return fmt.Sprintf("ошибка при выполнении SQL запроса для %s: %v", e.Operation, e.Cause)
}

func (e *ErrSQLExecution) Unwrap() error {
	return e.Cause
}

// ErrMalformedEvent is reported for platform events that cannot be decoded.
type ErrMalformedEvent struct {
	Reason string
}

func (e *ErrMalformedEvent) Error() string {
	return fmt.Sprintf("некорректное событие платформы: %s", e.Reason)
}

func (e *ErrMalformedEvent) Is(target error) bool {
	_, ok := target.(*ErrMalformedEvent)
	return ok
}

type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error: %d", e.StatusCode)
}
