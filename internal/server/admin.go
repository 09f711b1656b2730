package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/sdibella/leadoptions/internal/admin"
	"github.com/sdibella/leadoptions/internal/auth"
	"github.com/sdibella/leadoptions/internal/platform"
	"github.com/sdibella/leadoptions/internal/settings"
)

// matchRatio is the largest edit distance, relative to question length,
// a training match may have.
const matchRatio = 0.4

func pathInt(r *http.Request, name string) (int64, error) {
	n, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", errBadRequest, name, r.PathValue(name))
	}
	return n, nil
}

func handleAdminOverview(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		writeJSON(w, http.StatusOK, map[string]any{
			"state":       app.Holder.Snapshot(),
			"users":       app.Users.Search(""),
			"requests":    app.Requests.Pending(),
			"toggles":     app.System.Toggles(),
			"broadcast":   app.Broadcaster.Status(),
			"settings":    app.Settings.Get(),
			"unreadChats": app.Chat.TotalUnreadAdmin(),
		})
	}
}

func handleUsers(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		writeJSON(w, http.StatusOK, app.Users.Search(r.URL.Query().Get("search")))
	}
}

func handleUser(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		id, err := pathInt(r, "id")
		if err != nil {
			writeError(w, err)
			return
		}
		u, err := app.Users.Get(int(id))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": u, "audit": admin.AuditLogs(u)})
	}
}

func handleUpdateUser(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		id, err := pathInt(r, "id")
		if err != nil {
			writeError(w, err)
			return
		}
		var u admin.User
		if err := decodeJSON(r, &u); err != nil {
			writeError(w, err)
			return
		}
		u.ID = int(id)
		if err := app.Users.Update(u); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

func handleDeleteUser(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		id, err := pathInt(r, "id")
		if err != nil {
			writeError(w, err)
			return
		}
		if err := app.Users.Delete(int(id)); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleRequests(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		writeJSON(w, http.StatusOK, map[string]any{
			"pending":   app.Requests.Pending(),
			"decisions": app.Requests.Decisions(),
		})
	}
}

func handleResolve(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		id, err := pathInt(r, "id")
		if err != nil {
			writeError(w, err)
			return
		}
		d, err := app.Requests.Resolve(int(id), admin.Action(r.PathValue("action")))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}

func handleToggle(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		t, err := app.System.Toggle(r.PathValue("key"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

func handleBroadcastStatus(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": app.Broadcaster.Status(),
			"last":   app.Broadcaster.Last(),
		})
	}
}

func handleBroadcast(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		var req struct {
			Message string `json:"message"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := app.Broadcaster.Send(req.Message); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{"status": app.Broadcaster.Status()})
	}
}

func handleGetSettings(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		writeJSON(w, http.StatusOK, app.Settings.Get())
	}
}

func handlePutSettings(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		var s settings.SystemSettings
		if err := decodeJSON(r, &s); err != nil {
			writeError(w, err)
			return
		}
		if err := app.Settings.Update(s); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, app.Settings.Get())
	}
}

func handleCrash(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		writeJSON(w, http.StatusOK, app.Crash(sess.Email))
	}
}

func handleTraining(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		writeJSON(w, http.StatusOK, map[string]any{
			"items":      app.Training.Filter(r.URL.Query().Get("category")),
			"categories": app.Training.Categories(),
		})
	}
}

func handleSaveTraining(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		var item admin.TrainingItem
		if err := decodeJSON(r, &item); err != nil {
			writeError(w, err)
			return
		}
		saved, err := app.Training.Save(item)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	}
}

func handleDeleteTraining(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		id, err := pathInt(r, "id")
		if err != nil {
			writeError(w, err)
			return
		}
		if err := app.Training.Delete(id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleMatchTraining(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		item, ok := app.Training.Match(r.URL.Query().Get("q"), matchRatio)
		if !ok {
			writeError(w, fmt.Errorf("no training match: %w", admin.ErrNotFound))
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func handleAdminChats(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		writeJSON(w, http.StatusOK, map[string]any{
			"sessions": app.Chat.Sessions(),
			"unread":   app.Chat.TotalUnreadAdmin(),
		})
	}
}

func handleAdminReply(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		var req struct {
			Text string `json:"text"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		cs, err := app.Chat.AdminSend(r.PathValue("user"), req.Text)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cs)
	}
}
