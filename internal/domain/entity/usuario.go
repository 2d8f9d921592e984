package entity

import "time"

// Roles válidos para Usuario.
const (
	RolAdmin    = "admin"
	RolContador = "contador"
	RolUsuario  = "usuario"
)

// Usuario representa un cliente de la app de escaneo.
type Usuario struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Nombre       string
	RNC          string // RNC o cédula del contribuyente, opcional
	Rol          string // admin, contador, usuario
	Estado       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
