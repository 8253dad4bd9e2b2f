package feed

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// graphql-transport-ws message types
const (
	msgConnectionInit = "connection_init"
	msgConnectionAck  = "connection_ack"
	msgSubscribe      = "subscribe"
	msgNext           = "next"
	msgError          = "error"
	msgComplete       = "complete"
	msgPing           = "ping"
	msgPong           = "pong"
	msgKeepAlive      = "ka"
)

// Envelope is the outer graphql-transport-ws frame.
type Envelope struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// initPayload carries the credential on connection_init.
type initPayload struct {
	Authorization string `json:"authorization"`
}

// subscribePayload carries the GraphQL operation on subscribe.
type subscribePayload struct {
	OperationName string                 `json:"operationName"`
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
}

// EventMessage is the JSON envelope of a data message:
// {payload: {data: {raceEvent: {...}}}}.
type EventMessage struct {
	Payload struct {
		Data struct {
			RaceEvent *RaceEvent `json:"raceEvent"`
		} `json:"data"`
	} `json:"payload"`
}

// RaceEvent is a single notification about a race entity's lifecycle
// change. Ephemeral; only used to decide whether to act.
type RaceEvent struct {
	ID             string        `json:"id"`
	Timestamp      string        `json:"timestamp"`
	Action         string        `json:"action"`
	EntityID       string        `json:"entityId"`
	EntityTypename string        `json:"entityTypename"`
	Entity         *RaceSnapshot `json:"entity"`
}

// RaceSnapshot is the embedded race state carried by a RaceEvent.
type RaceSnapshot struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	Status        string                `json:"status"`
	StartTime     string                `json:"startTime"`
	FinishTime    string                `json:"finishTime"`
	RacePotsTotal decimal.Decimal       `json:"racePotsTotal"`
	Participants  []ParticipantSnapshot `json:"participants"`
}

// ParticipantSnapshot is one entrant's result within a race snapshot.
type ParticipantSnapshot struct {
	GateNumber         int             `json:"gateNumber"`
	FinishPosition     int             `json:"finishPosition"`
	FinishTime         string          `json:"finishTime"`
	Earnings           decimal.Decimal `json:"earnings"`
	Stake              decimal.Decimal `json:"stake"`
	StartingPoints     int             `json:"startingPoints"`
	Points             int             `json:"points"`
	SectionalPositions []float64       `json:"sectionalPositions"`
	Augments           []*string       `json:"augments"`
	AugmentsTriggered  []bool          `json:"augmentsTriggered"`
	Horse              *HorseSnapshot  `json:"horse"`
}

// HorseSnapshot is the nested horse state on a participant.
type HorseSnapshot struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Bloodline       string `json:"bloodline"`
	Generation      int    `json:"generation"`
	Gender          string `json:"gender"`
	SpeedRating     int    `json:"speedRating"`
	SprintRating    int    `json:"sprintRating"`
	EnduranceRating int    `json:"enduranceRating"`
	State           string `json:"state"`
	UserID          string `json:"userId"`
	User            *struct {
		StableName string `json:"stableName"`
	} `json:"user"`
}
