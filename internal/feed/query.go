package feed

// RaceEventOperationName is the GraphQL operation name for the race
// lifecycle subscription.
const RaceEventOperationName = "RaceEventSub"

// RaceEventSubscription requests every field the normalizer needs for a
// finished race, including nested horse and stable data.
const RaceEventSubscription = `
subscription RaceEventSub($where: SimpleEntityEventWhereInput) {
  raceEvent(where: $where) {
    id
    timestamp
    action
    entityId
    entityTypename
    entity {
      ... on Race {
        id
        name
        status
        startTime
        finishTime
        racePotsTotal
        participants {
          gateNumber
          earnings
          stake
          startingPoints
          points
          finishPosition
          finishTime
          sectionalPositions
          augments
          augmentsTriggered
          horse {
            id
            name
            bloodline
            generation
            gender
            speedRating
            sprintRating
            enduranceRating
            state
            userId
            user {
              stableName
            }
          }
        }
      }
    }
  }
}
`

// RaceEventVariables restricts the subscription to race entities.
func RaceEventVariables() map[string]interface{} {
	return map[string]interface{}{
		"where": map[string]interface{}{
			"entityTypename": "Race",
		},
	}
}
