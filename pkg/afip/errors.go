package afip

import (
	"errors"
	"fmt"
	"strings"
)

// Taxonomía de errores de la integración AFIP. Cada tipo distingue una clase
// de falla con política de manejo propia:
//
//   - ValidationError: entrada inválida detectada antes de tocar la red.
//   - SigningError: certificado o firma CMS; casi siempre mala configuración.
//   - TransportError: falla HTTP/red contra el endpoint SOAP.
//   - ParseError: respuesta recibida pero malformada o incompleta.
//   - RemoteFaultError: SOAP Fault bien formado.
//   - RemoteBusinessError: respuesta sin fault que igual rechaza la operación.
//
// Ninguno se reintenta automáticamente, con una única excepción acotada: el
// fault "ya existe un TA válido" de WSAA (ver TicketAlreadyExists).

// ValidationError entrada inválida detectada antes de cualquier llamada de red.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return "afip: validación: " + e.Msg }

// Validationf construye un ValidationError con formato.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// SigningError falla cargando el certificado o produciendo/verificando el CMS.
type SigningError struct {
	Op  string
	Err error
}

func (e *SigningError) Error() string { return fmt.Sprintf("afip: firma (%s): %v", e.Op, e.Err) }
func (e *SigningError) Unwrap() error { return e.Err }

// TransportError falla de red o HTTP alcanzando un endpoint SOAP.
// Un timeout también es TransportError: no dice nada sobre la validez del ticket.
type TransportError struct {
	Service string
	Op      string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("afip: transporte %s/%s: %v", e.Service, e.Op, e.Err)
}
func (e *TransportError) Unwrap() error { return e.Err }

// ParseError respuesta recibida pero no parseable o sin los elementos esperados.
// Raw retiene el payload original para diagnóstico: las respuestas malformadas
// de AFIP son una realidad operativa recurrente.
type ParseError struct {
	Service string
	Op      string
	Msg     string
	Raw     string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("afip: parseo %s/%s: %s: %v", e.Service, e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("afip: parseo %s/%s: %s", e.Service, e.Op, e.Msg)
}
func (e *ParseError) Unwrap() error { return e.Err }

// RemoteFaultError SOAP Fault estructurado devuelto por WSAA o WSFEv1.
// ExceptionName y Hostname vienen del detail propietario de Axis cuando existe.
type RemoteFaultError struct {
	FaultCode     string
	FaultString   string
	ExceptionName string
	Hostname      string
}

func (e *RemoteFaultError) Error() string {
	return fmt.Sprintf("afip: SOAP Fault [%s] %s", e.FaultCode, e.FaultString)
}

// TicketAlreadyExists detecta el fault conocido de WSAA cuando el CEE ya posee
// un TA válido para el servicio solicitado. Es el único fault con reintento
// sancionado (una recuperación desde el store persistente tras un backoff fijo).
func (e *RemoteFaultError) TicketAlreadyExists() bool {
	if strings.Contains(e.FaultCode, "alreadyAuthenticated") {
		return true
	}
	s := strings.ToLower(e.FaultString)
	return strings.Contains(s, "ta valido") || strings.Contains(s, "ta válido")
}

// ServiceError error u observación de negocio devuelto por WSFEv1 (Err/Obs).
type ServiceError struct {
	Code int
	Msg  string
}

func (e ServiceError) String() string { return fmt.Sprintf("%d: %s", e.Code, e.Msg) }

// RemoteBusinessError respuesta bien formada, sin fault, que rechaza la
// operación con una lista de errores de negocio (punto de venta inexistente,
// tipo de comprobante inválido, etc.). Se lanza solo en consultas auxiliares;
// en FECAESolicitar el rechazo es parte del resultado, no una excepción.
type RemoteBusinessError struct {
	Service string
	Op      string
	Errors  []ServiceError
}

func (e *RemoteBusinessError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, se := range e.Errors {
		msgs[i] = se.String()
	}
	return fmt.Sprintf("afip: %s/%s rechazado: %s", e.Service, e.Op, strings.Join(msgs, "; "))
}

// IsValidation indica si err (o su cadena) es un ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
