package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"ferrepos/internal/apierror"
	"ferrepos/internal/infra"
	"ferrepos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// Report fields by their JSON name, the one the UI knows.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// paramInt reads a positive integer path parameter, writing 400 otherwise.
func paramInt(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n <= 0 {
		c.JSON(http.StatusBadRequest, apierror.New(name+" invalido"))
		return 0, false
	}
	return n, true
}

// responderError maps service errors to the API error envelope.
func responderError(c *gin.Context, err error) {
	var ve *service.ValidationError
	var be *infra.BackendError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidationMsg(ve.Campo, ve.Mensaje))
	case errors.Is(err, service.ErrEnvioEnCurso), errors.Is(err, service.ErrTransicionInvalida):
		c.JSON(http.StatusConflict, apierror.WithCodigo(apierror.CodigoConflicto, err.Error()))
	case errors.Is(err, service.ErrNoEncontrado):
		c.JSON(http.StatusNotFound, apierror.WithCodigo(apierror.CodigoNoEncontrado, err.Error()))
	case errors.Is(err, service.ErrCredenciales):
		c.JSON(http.StatusUnauthorized, apierror.WithCodigo(apierror.CodigoAuth, "Credenciales invalidas"))
	case errors.Is(err, service.ErrRolNoPermitido):
		c.JSON(http.StatusForbidden, apierror.WithCodigo(apierror.CodigoAuth, err.Error()))
	case errors.As(err, &be) && be.Status == http.StatusUnauthorized:
		// The cached backend token expired before the session did.
		c.JSON(http.StatusUnauthorized, apierror.WithCodigo(apierror.CodigoAuth, "Sesion del servidor de ventas expirada, ingresa nuevamente"))
	case errors.As(err, &be) && be.Status == http.StatusNotFound:
		msg := be.Detail
		if msg == "" {
			msg = "No existe en el servidor de ventas"
		}
		c.JSON(http.StatusNotFound, apierror.WithCodigo(apierror.CodigoNoEncontrado, msg))
	case errors.Is(err, infra.ErrCircuitOpen):
		c.JSON(http.StatusServiceUnavailable, apierror.WithCodigo(apierror.CodigoBackend, "El servidor de ventas no está disponible, intenta en unos segundos"))
	case errors.Is(err, service.ErrBackend):
		msg := "No se pudo completar la operación con el servidor de ventas"
		if be != nil && be.Detail != "" && be.Status < 500 {
			msg = be.Detail
		}
		c.JSON(http.StatusBadGateway, apierror.WithCodigo(apierror.CodigoBackend, msg))
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("handler: error no clasificado")
		_ = c.Error(err)
	}
}
