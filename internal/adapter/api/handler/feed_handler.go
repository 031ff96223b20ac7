package handler

import (
	"context"
	"encoding/json"
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"giveget/internal/domain/entity"
	ws "giveget/internal/infrastructure/websocket"
	"giveget/internal/usecase"
	"giveget/pkg/errors"
	"giveget/pkg/logger"
	"giveget/pkg/response"
)

type FeedHandler struct {
	manager  *ws.Manager
	source   usecase.FeedSource
	upgrader gorillaws.Upgrader
}

var feedHandler *FeedHandler

func NewFeedHandler(manager *ws.Manager, source usecase.FeedSource) *FeedHandler {
	return &FeedHandler{
		manager: manager,
		source:  source,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func SetupFeedHandler(manager *ws.Manager, source usecase.FeedSource) {
	feedHandler = NewFeedHandler(manager, source)
}

func GetFeedHandler() *FeedHandler {
	return feedHandler
}

// feedRequest is a client frame. Absent fields keep their current value;
// retry reopens both subscriptions.
type feedRequest struct {
	Tab   string  `json:"tab"`
	Query *string `json:"query"`
	Retry bool    `json:"retry"`
}

type tabStatus struct {
	Loading bool                `json:"loading"`
	Count   int                 `json:"count"`
	Error   *response.ErrorInfo `json:"error,omitempty"`
}

type feedView struct {
	Kind  string          `json:"kind"`
	Tab   entity.PostType `json:"tab"`
	Query string          `json:"query"`
	Items []*entity.Post  `json:"items"`
	Give  tabStatus       `json:"give"`
	Get   tabStatus       `json:"get"`
}

// HandleFeed upgrades to a websocket and pushes the filtered view of the
// active tab whenever a listing, the tab or the query changes.
func (h *FeedHandler) HandleFeed(c echo.Context) error {
	userID := identityFrom(c).UID
	if userID == "" {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Warn("Feed upgrade for %s failed: %v", userID, err)
		return nil
	}

	client := ws.NewClient(userID, conn)
	if !h.manager.Add(client) {
		logger.Warn("Feed for %s refused during shutdown", userID)
		conn.Close()
		return nil
	}

	requests := make(chan feedRequest)
	go client.WritePump()
	go h.serve(client, requests)
	go client.ReadPump(h.manager, func(message []byte) {
		var req feedRequest
		if err := json.Unmarshal(message, &req); err != nil {
			logger.Warn("Ignoring malformed feed frame from %s: %v", userID, err)
			return
		}
		// serve runs until the read side ends, so this cannot block forever.
		requests <- req
	})

	return nil
}

// serve owns the client's ListingFeed for the lifetime of the connection.
func (h *FeedHandler) serve(client *ws.Client, requests <-chan feedRequest) {
	ctx, cancel := context.WithCancel(context.Background())
	feed := usecase.NewListingFeed(h.source)
	defer func() {
		feed.Stop()
		cancel()
	}()

	feed.Start(ctx)

	tab := entity.PostTypeGive
	query := ""
	for {
		select {
		case <-client.Done():
			return

		case <-feed.Changes():

		case req := <-requests:
			if req.Retry {
				feed.Start(ctx)
			}
			if req.Tab != "" {
				t, err := entity.ParsePostType(req.Tab)
				if err != nil {
					logger.Warn("Feed client %s asked for %v", client.UserID, err)
					continue
				}
				tab = t
			}
			if req.Query != nil {
				query = *req.Query
			}
		}

		h.push(client, feed, tab, query)
	}
}

func (h *FeedHandler) push(client *ws.Client, feed *usecase.ListingFeed, tab entity.PostType, query string) {
	view := feedView{
		Kind:  "view",
		Tab:   tab,
		Query: query,
		Items: feed.Visible(tab, query),
		Give:  toTabStatus(feed.State(entity.PostTypeGive)),
		Get:   toTabStatus(feed.State(entity.PostTypeGet)),
	}

	message, err := json.Marshal(view)
	if err != nil {
		logger.Error("Encoding feed view failed: %v", err)
		return
	}
	if !client.Enqueue(message) {
		logger.Debug("Dropped feed frame for %s", client.UserID)
	}
}

func toTabStatus(state usecase.TabState) tabStatus {
	status := tabStatus{Loading: state.Loading, Count: state.Count}
	if state.Err != nil {
		status.Error = &response.ErrorInfo{
			Code:    state.Err.Code,
			Message: state.Err.Message,
		}
	}
	return status
}
