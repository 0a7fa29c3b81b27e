// Package slot provides the single-sample handoff shared by one producer and
// one consumer.
package slot

// Slot couples two signals. The mutex guards the payload so a reader never
// observes x and y from different cycles. The ready flag means "a value not
// yet consumed exists" and is read and written without the mutex.
//
// Producer: acquire, write, release, then set ready.
// Consumer: wait for ready, clear ready, acquire, read, release.
//
// Clearing the flag before acquiring the mutex means a sample published while
// the consumer waits for the mutex raises the flag again, so it is never
// silently merged into the read already in flight.
