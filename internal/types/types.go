package types

import pub "github.com/DoyleJ11/brawl-draft-tracker/pkg/types"

// ServerMessage is one websocket frame sent to an overlay.
type ServerMessage struct {
	Type    string     `json:"type"`
	Version int        `json:"version,omitempty"`
	Draft   *pub.Draft `json:"draft,omitempty"`
}

const MsgDraftSnapshot = "DraftSnapshot"
