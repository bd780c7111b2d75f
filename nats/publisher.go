package nats

import (
	jsoniter "github.com/json-iterator/go"
	"pokertable.io/server/game"
	"pokertable.io/server/logging"
)

var publisherLogger = logging.GetZeroLogger("nats::publisher", nil)

// Conn is the part of a NATS connection used here.
type Conn interface {
	Publish(subject string, data []byte) error
}

// TablePublisher pushes table changes to NATS. The public view goes to the
// table's status subject and every seated player gets their own view on a
// private subject.
type TablePublisher struct {
	nc Conn
}

func NewTablePublisher(nc Conn) *TablePublisher {
	return &TablePublisher{nc: nc}
}

func (p *TablePublisher) TableChanged(t *game.Table) {
	p.publish(t.ID, GetTableStatusSubject(t.ID), game.ViewFor(t, ""))
	for _, player := range t.Players {
		p.publish(t.ID, GetTable2PlayerSubject(t.ID, player.ID), game.ViewFor(t, player.ID))
	}
}

func (p *TablePublisher) publish(tableID string, subject string, view game.PlayerView) {
	data, err := jsoniter.Marshal(view)
	if err != nil {
		publisherLogger.Error().
			Str(logging.TableIDKey, tableID).
			Msgf("Unable to encode table view: %v", err)
		return
	}
	if err := p.nc.Publish(subject, data); err != nil {
		publisherLogger.Error().
			Str(logging.TableIDKey, tableID).
			Str(logging.SubjectKey, subject).
			Msgf("Unable to publish table view: %v", err)
	}
}
