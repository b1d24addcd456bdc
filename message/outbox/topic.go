package outbox

// topic is the Postgres-backed forwarder queue; everything published through
// the outbox lands here and gets replayed onto redis after commit.
const topic = "events_to_forward"
