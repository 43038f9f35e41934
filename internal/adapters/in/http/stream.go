package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/generated/servers"

	"github.com/labstack/echo/v4"
)

// StreamVisibleOrders handles GET /api/v1/couriers/{phone}/orders/visible/stream.
//
// Every feed snapshot is sent as a "snapshot" event whose id is the snapshot
// version. A comment line is written when nothing was sent for the heartbeat
// interval. If the feed fails, an "error" event carrying an Error ends the stream.
func (s *Server) StreamVisibleOrders(ctx echo.Context, phone servers.Phone) error {
	courierPhone, err := kernel.NewPhoneNumber(phone)
	if err != nil {
		return writeError(ctx, s.logger, err)
	}

	reqCtx := ctx.Request().Context()
	sub, err := s.projector.Subscribe(reqCtx, courierPhone)
	if err != nil {
		return writeError(ctx, s.logger, err)
	}
	defer func() {
		_ = sub.Close()
	}()

	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-reqCtx.Done():
			return nil
		case <-heartbeat.C:
			if _, err = io.WriteString(res, ": ping\n\n"); err != nil {
				return nil
			}
			res.Flush()
		case snapshot, ok := <-sub.Updates():
			if !ok {
				if feedErr := sub.Err(); feedErr != nil {
					s.logger.WarnContext(reqCtx, "feed stream ended",
						"courier", courierPhone.String(),
						"error", feedErr)
					code := statusFor(feedErr)
					_ = writeEvent(res, "error", "", servers.Error{Code: code, Message: http.StatusText(code)})
				}
				return nil
			}
			if err = writeEvent(res, "snapshot", fmt.Sprint(snapshot.Version), toFeedSnapshot(snapshot)); err != nil {
				return nil
			}
			heartbeat.Reset(s.heartbeat)
		}
	}
}

func writeEvent(res *echo.Response, event, id string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if id != "" {
		if _, err = fmt.Fprintf(res, "id: %s\n", id); err != nil {
			return err
		}
	}
	if _, err = fmt.Fprintf(res, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	res.Flush()
	return nil
}
