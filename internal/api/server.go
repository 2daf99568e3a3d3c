package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/LifeLane/Shadow-Console-sub000/internal/ai"
	"github.com/LifeLane/Shadow-Console-sub000/internal/domain"
	"github.com/LifeLane/Shadow-Console-sub000/internal/hub"
	"github.com/LifeLane/Shadow-Console-sub000/internal/lifecycle"
	"github.com/LifeLane/Shadow-Console-sub000/internal/manager"
	"github.com/LifeLane/Shadow-Console-sub000/internal/storage"
	"github.com/LifeLane/Shadow-Console-sub000/pkg/utils"
)

// Server HTTP-сервер дашборда
type Server struct {
	logger     *utils.Logger
	controller *lifecycle.Controller
	storage    *storage.Storage
	missions   *manager.MissionManager
	staking    *manager.StakingManager
	chat       *ai.ChatClient
	hub        *hub.Hub
	userID     string
	port       int

	httpServer *http.Server
}

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type SignalRequest struct {
	Symbol    string `json:"symbol"`
	TradeMode string `json:"tradeMode"`
	Risk      string `json:"risk"`
}

type MissionRequest struct {
	MissionID string `json:"missionId"`
}

type StakeRequest struct {
	Amount float64 `json:"amount"`
}

type AgentStatusRequest struct {
	AgentID string `json:"agentId"`
	Status  string `json:"status"`
}

type ChatRequest struct {
	History []ai.ChatTurn `json:"history"`
	Message string        `json:"message"`
}

func NewServer(
	logger *utils.Logger,
	controller *lifecycle.Controller,
	st *storage.Storage,
	missions *manager.MissionManager,
	staking *manager.StakingManager,
	chat *ai.ChatClient,
	h *hub.Hub,
	userID string,
	port int,
) *Server {
	return &Server{
		logger:     logger,
		controller: controller,
		storage:    st,
		missions:   missions,
		staking:    staking,
		chat:       chat,
		hub:        h,
		userID:     userID,
		port:       port,
	}
}

func (s *Server) Start() error {
	mux := http.NewServeMux()

	// Register routes
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/state", s.handleState)
	mux.HandleFunc("/signal", s.handleSignal)
	mux.HandleFunc("/signal/ack", s.handleAcknowledge)
	mux.HandleFunc("/signal/abort", s.handleAbort)
	mux.HandleFunc("/signals", s.handleSignals)
	mux.HandleFunc("/user", s.handleUser)
	mux.HandleFunc("/missions", s.handleMissions)
	mux.HandleFunc("/mission/complete", s.handleMissionComplete)
	mux.HandleFunc("/stake", s.handleStake)
	mux.HandleFunc("/unstake", s.handleUnstake)
	mux.HandleFunc("/agents", s.handleAgents)
	mux.HandleFunc("/agent/status", s.handleAgentStatus)
	mux.HandleFunc("/chat", s.handleChat)
	mux.HandleFunc("/ws", s.hub.HandleWebSocket)

	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("Starting HTTP server on %s", addr)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s.httpServer.ListenAndServe()
}

// Stop корректно останавливает HTTP-сервер
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Close()
}

// handleHealth - health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.sendSuccess(w, map[string]interface{}{
		"status":    "healthy",
		"state":     s.controller.State(),
		"timestamp": time.Now().Unix(),
	})
}

// handleState текущее состояние машины жизненного цикла
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.sendSuccess(w, s.controller.Snapshot())
}

// handleSignal заявка на новый сигнал
func (s *Server) handleSignal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SignalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err := s.controller.Request(lifecycle.TradeRequest{
		Symbol:    req.Symbol,
		TradeMode: req.TradeMode,
		Risk:      req.Risk,
	})
	if err != nil {
		if errors.Is(err, domain.ErrSignalActive) {
			s.sendError(w, "Signal already in progress", http.StatusConflict)
			return
		}
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.sendSuccess(w, s.controller.Snapshot())
}

// handleAcknowledge подтверждение показанного результата
func (s *Server) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.controller.Acknowledge(); err != nil {
		s.sendError(w, "No resolved signal to acknowledge", http.StatusConflict)
		return
	}

	s.sendSuccess(w, s.controller.Snapshot())
}

// handleAbort прерывание текущей попытки
func (s *Server) handleAbort(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.controller.Reset()
	s.sendSuccess(w, s.controller.Snapshot())
}

// handleSignals история сигналов игрока
func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit, err := strconv.Atoi(getQueryParam(r, "limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}

	signals, err := s.storage.Signals.GetRecent(s.userID, limit)
	if err != nil {
		s.sendError(w, fmt.Sprintf("Failed to load signals: %v", err), http.StatusInternalServerError)
		return
	}

	s.sendSuccess(w, signals)
}

// handleUser запись игрока с агрегатами
func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, err := s.storage.Users.Get(s.userID)
	if err != nil {
		s.sendError(w, fmt.Sprintf("Failed to load user: %v", err), http.StatusInternalServerError)
		return
	}

	s.sendSuccess(w, user)
}

// handleMissions каталог миссий
func (s *Server) handleMissions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	missions, err := s.storage.Missions.GetAll()
	if err != nil {
		s.sendError(w, fmt.Sprintf("Failed to load missions: %v", err), http.StatusInternalServerError)
		return
	}

	s.sendSuccess(w, missions)
}

// handleMissionComplete зачисление награды за миссию
func (s *Server) handleMissionComplete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req MissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MissionID == "" {
		s.sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := s.missions.Complete(s.userID, req.MissionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.sendError(w, "Mission not found", http.StatusNotFound)
			return
		}
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.sendSuccess(w, user)
}

// handleStake перевод SHADOW в стейк
func (s *Server) handleStake(w http.ResponseWriter, r *http.Request) {
	s.handleStakeTransfer(w, r, s.staking.Stake)
}

// handleUnstake возврат SHADOW из стейка
func (s *Server) handleUnstake(w http.ResponseWriter, r *http.Request) {
	s.handleStakeTransfer(w, r, s.staking.Unstake)
}

func (s *Server) handleStakeTransfer(w http.ResponseWriter, r *http.Request, transfer func(string, float64) (*domain.User, error)) {
	if r.Method != http.MethodPost {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req StakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := transfer(s.userID, req.Amount)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			s.sendError(w, err.Error(), http.StatusConflict)
			return
		}
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.sendSuccess(w, user)
}

// handleAgents каталог агентов
func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	agents, err := s.storage.Agents.GetAll()
	if err != nil {
		s.sendError(w, fmt.Sprintf("Failed to load agents: %v", err), http.StatusInternalServerError)
		return
	}

	s.sendSuccess(w, agents)
}

// handleAgentStatus смена статуса агента
func (s *Server) handleAgentStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req AgentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AgentID == "" {
		s.sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.storage.Agents.SetStatus(req.AgentID, req.Status); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.sendError(w, "Agent not found", http.StatusNotFound)
			return
		}
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.sendSuccess(w, map[string]string{"agentId": req.AgentID, "status": req.Status})
}

// handleChat разговорный агент консоли
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		s.sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	reply, err := s.chat.Chat(r.Context(), req.History, req.Message)
	if err != nil {
		s.sendError(w, fmt.Sprintf("Chat failed: %v", err), http.StatusBadGateway)
		return
	}

	s.sendSuccess(w, map[string]string{"reply": reply})
}

// Helper methods
func (s *Server) sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Response{
		Success: true,
		Data:    data,
	})
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(Response{
		Success: false,
		Error:   message,
	})
}

// Helper function to parse query parameter
func getQueryParam(r *http.Request, key string, defaultValue string) string {
	if value := r.URL.Query().Get(key); value != "" {
		return value
	}
	return defaultValue
}
