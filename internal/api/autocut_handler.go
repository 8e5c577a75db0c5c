package api

import (
	"encoding/json"
	"net/http"

	"github.com/cutroom/cutroom-agent/internal/autocut"
	"github.com/cutroom/cutroom-agent/internal/timeline"
)

func autocutHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AutocutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if req.AssetID == "" {
			WriteError(w, http.StatusBadRequest, "asset_id is required", "BAD_REQUEST")
			return
		}

		idx := timeline.NewAssetIndex(req.Assets)
		asset, ok := idx.Lookup(req.AssetID)
		if !ok {
			WriteError(w, http.StatusBadRequest, "asset_id does not match any asset", "BAD_REQUEST")
			return
		}

		trackID := req.TrackID
		if trackID == "" {
			trackID = "video-1"
		}

		clips := autocut.Cut(req.Words, asset, trackID)
		if clips == nil {
			clips = []timeline.Clip{}
		}

		WriteJSON(w, http.StatusOK, AutocutResponse{Clips: clips})
	}
}
