// Package service provides application-level services for curricula, learning
// outcomes, courses, students, and enrollments. Services own business rules
// that span entities and run multi-store mutations inside transactions.
package service

// Error handling principles:
//  1. Expected conditions surface as domain or store sentinel errors
//     (domain.ErrInvalidOperation, domain.ErrDuplicateEntity, store.ErrNotFound)
//     so callers can branch with errors.Is.
//  2. Unexpected errors are wrapped with operation context via fmt.Errorf.
//  3. The API layer maps sentinel errors to HTTP status codes and
//     machine-readable codes; services never reference HTTP.
