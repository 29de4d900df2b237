package transport

import (
	"github.com/mcoot/rpschat/internal/model"
	"github.com/mcoot/rpschat/internal/services/broadcast"
)

// Session is the engine a transport feeds lines into
type Session interface {
	Attach(sink broadcast.Sink)
	HandleLine(conn model.ConnID, line string)
	Disconnect(conn model.ConnID) error
}
