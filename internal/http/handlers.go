/* Copyright (c) 2025 Dinesh Yadav
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
    "context"
    "net/http"
    "time"

    "github.com/dineshyadav009/retrospectives/internal/config"
    "github.com/gin-gonic/gin"
    "github.com/rs/zerolog"
)

type service interface {
    Generate(ctx context.Context) error
    GetLastRun(ctx context.Context) (any, error)
    UpdateAssignee(ctx context.Context, ticketID, assignee string) error
    LogWork(ctx context.Context, ticketID string, started time.Time, seconds int, comment string) error
}

type Handlers struct {
    cfg config.Config
    log zerolog.Logger
    svc service
}

func NewHandlers(cfg config.Config, log zerolog.Logger, svc any) *Handlers {
    return &Handlers{cfg: cfg, log: log, svc: svc.(service)}
}

func (h *Handlers) Healthz(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) LastRun(c *gin.Context) {
    lr, err := h.svc.GetLastRun(c.Request.Context())
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, lr)
}

func (h *Handlers) RunNow(c *gin.Context) {
    // Detached from the request context: generation outlives the HTTP call
    go func() { _ = h.svc.Generate(context.Background()) }()
    c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

func (h *Handlers) UpdateAssignee(c *gin.Context) {
    var req struct {
        Ticket   string `json:"ticket" binding:"required"`
        Assignee string `json:"assignee" binding:"required"`
    }
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    if err := h.svc.UpdateAssignee(c.Request.Context(), req.Ticket, req.Assignee); err != nil {
        c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) AddWorklog(c *gin.Context) {
    var req struct {
        Ticket  string `json:"ticket" binding:"required"`
        Started string `json:"started" binding:"required"`
        Seconds int    `json:"seconds" binding:"required"`
        Comment string `json:"comment"`
    }
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    started, err := time.Parse(time.RFC3339, req.Started)
    if err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "started must be RFC3339"})
        return
    }
    if err := h.svc.LogWork(c.Request.Context(), req.Ticket, started, req.Seconds, req.Comment); err != nil {
        c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"ok": true})
}
