package handler

import (
	"net/http"
	"strconv"

	"ferrepos/internal/apierror"
	"ferrepos/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// CorreosFallidos godoc
// @Summary Correos de recibo fallidos
// @Description Últimas entradas de la cola de descarte de correos. Sin Redis devuelve una lista vacía.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param n query int false "Cantidad máxima (1-100, por defecto 20)"
// @Success 200 {object} map[string]interface{}
// @Router /v1/admin/correos/fallidos [get]
func CorreosFallidos(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := strconv.Atoi(c.DefaultQuery("n", "20"))
		if err != nil || n < 1 || n > 100 {
			c.JSON(http.StatusBadRequest, apierror.New("n debe estar entre 1 y 100"))
			return
		}
		if rdb == nil {
			c.JSON(http.StatusOK, gin.H{"data": []worker.DLQEntry{}, "total": 0})
			return
		}
		ctx := c.Request.Context()
		entradas, err := worker.DLQRecientes(ctx, rdb, worker.QueueRecibos, int64(n))
		if err != nil {
			_ = c.Error(err)
			return
		}
		total, err := worker.DLQLength(ctx, rdb, worker.QueueRecibos)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": entradas, "total": total})
	}
}
