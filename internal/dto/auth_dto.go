package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=1"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UsuarioResponse struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Correo string `json:"correo"`
	Rol    string `json:"rol"`
}

type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int             `json:"expires_in"` // seconds
	User        UsuarioResponse `json:"user"`
}

// ─── Backend wire DTOs ───────────────────────────────────────────────────────

// BackendLoginRequest is the body of POST /login on the remote backend.
type BackendLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// BackendLoginResponse is returned by POST /login on the remote backend.
type BackendLoginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID     FlexString `json:"id"`
		Nombre string     `json:"nombre"`
		Correo string     `json:"correo"`
		Rol    string     `json:"rol"`
	} `json:"user"`
}
