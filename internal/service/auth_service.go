package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ferrepos/internal/config"
	"ferrepos/internal/dto"
	"ferrepos/internal/infra"
	"ferrepos/internal/model"
	"ferrepos/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AuthService logs users in through the backend and issues ferrepos session tokens.
// The backend bearer token stays server-side in the session cache.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, sesionID string) error
}

type authService struct {
	backend    Backend
	sesiones   repository.SesionRepository
	terminales *Terminales
	cfg        *config.Config
	now        func() time.Time
}

func NewAuthService(backend Backend, sesiones repository.SesionRepository, terminales *Terminales, cfg *config.Config) AuthService {
	return &authService{backend: backend, sesiones: sesiones, terminales: terminales, cfg: cfg, now: time.Now}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	resp, err := s.backend.Login(ctx, req)
	if err != nil {
		var be *infra.BackendError
		if errors.As(err, &be) && (be.Status == http.StatusUnauthorized || be.Status == http.StatusForbidden) {
			return nil, ErrCredenciales
		}
		return nil, falloBackend("login", err)
	}

	rol := strings.ToLower(strings.TrimSpace(resp.User.Rol))
	if !model.RolValido(rol) {
		log.Warn().Str("username", req.Username).Str("rol", resp.User.Rol).Msg("login: rol no permitido")
		return nil, ErrRolNoPermitido
	}

	usuario := model.Usuario{
		ID:     resp.User.ID.String(),
		Nombre: resp.User.Nombre,
		Correo: resp.User.Correo,
		Rol:    rol,
	}
	if usuario.ID == "" {
		usuario.ID = req.Username
	}
	if usuario.Nombre == "" {
		usuario.Nombre = req.Username
	}

	ttl := s.cfg.SesionTTL()
	sesion := &model.Sesion{
		ID:       uuid.NewString(),
		Token:    resp.Token,
		Usuario:  usuario,
		ExpiraEn: s.now().Add(ttl),
	}
	if err := s.sesiones.Guardar(ctx, sesion, ttl); err != nil {
		return nil, fmt.Errorf("guardar sesion: %w", err)
	}

	accessToken, err := s.generateToken(sesion, req.Username)
	if err != nil {
		return nil, err
	}
	log.Info().Str("sesion_id", sesion.ID).Str("username", req.Username).Str("rol", rol).Msg("login")

	return &dto.LoginResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresIn:   int(ttl.Seconds()),
		User: dto.UsuarioResponse{
			ID:     usuario.ID,
			Nombre: usuario.Nombre,
			Correo: usuario.Correo,
			Rol:    usuario.Rol,
		},
	}, nil
}

// Logout forgets the cached backend token and the session's workspace.
func (s *authService) Logout(ctx context.Context, sesionID string) error {
	s.terminales.Cerrar(sesionID)
	if err := s.sesiones.Eliminar(ctx, sesionID); err != nil {
		return fmt.Errorf("eliminar sesion: %w", err)
	}
	return nil
}

func (s *authService) generateToken(sesion *model.Sesion, username string) (string, error) {
	claims := jwt.MapClaims{
		"sesion_id": sesion.ID,
		"user_id":   sesion.Usuario.ID,
		"username":  username,
		"rol":       sesion.Usuario.Rol,
		"exp":       sesion.ExpiraEn.Unix(),
		"iat":       s.now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
