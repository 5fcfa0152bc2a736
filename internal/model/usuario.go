package model

import (
	"time"
)

// Roles handed out by the backend login.
const (
	RolAdmin    = "admin"
	RolCaja     = "caja"
	RolVendedor = "vendedor"
)

// Usuario is the authenticated user as reported by the backend.
// Rol: "admin" | "caja" | "vendedor"
type Usuario struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Correo string `json:"correo"`
	Rol    string `json:"rol"`
}

// Sesion binds a ferrepos session id to the backend bearer token.
// Token is never returned to the browser.
type Sesion struct {
	ID       string    `json:"id"`
	Token    string    `json:"token"`
	Usuario  Usuario   `json:"usuario"`
	ExpiraEn time.Time `json:"expira_en"`
}

// RolValido reports whether rol is one of the known front-end roles.
func RolValido(rol string) bool {
	switch rol {
	case RolAdmin, RolCaja, RolVendedor:
		return true
	}
	return false
}
