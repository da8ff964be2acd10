package dataType

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

type timeSegment struct {
	timestamp int64
	count     int64
}

// trafficElement is a ring of per-second counters for one peer. Writing a
// second that has wrapped around overwrites the stale segment.
type trafficElement struct {
	segments    []timeSegment
	segSize     int64
	lastUpdated int64
}

func newTrafficElement(segments int) *trafficElement {
	return &trafficElement{
		segments:    make([]timeSegment, segments),
		segSize:     int64(segments),
		lastUpdated: time.Now().Unix(),
	}
}

func (e *trafficElement) add(ts int64, value int64) {
	idx := ts % e.segSize
	if e.segments[idx].timestamp != ts {
		e.segments[idx].timestamp = ts
		e.segments[idx].count = value
	} else {
		e.segments[idx].count += value
	}
	e.lastUpdated = ts
}

func (e *trafficElement) query(lastN int64, now int64) int64 {
	if lastN > e.segSize {
		lastN = e.segSize
	}
	var sum int64
	for i := int64(0); i < lastN; i++ {
		sec := now - lastN + 1 + i
		idx := sec % e.segSize
		if e.segments[idx].timestamp == sec {
			sum += e.segments[idx].count
		}
	}
	return sum
}

type trafficBucket struct {
	mu       sync.RWMutex
	counters map[uint64]*trafficElement
}

// TrafficCounter tracks inbound datagram rates per peer over a sliding
// window of seconds. Peers are spread across xxhash-selected buckets so the
// listener never serializes on one lock.
type TrafficCounter struct {
	buckets     []*trafficBucket
	bucketCount uint64
	segSize     int64
}

// NewTrafficCounter sizes the sliding window at windowSeconds and shards the
// peer map across bucketCount locks.
func NewTrafficCounter(bucketCount int, windowSeconds int64) *TrafficCounter {
	tc := &TrafficCounter{
		buckets:     make([]*trafficBucket, bucketCount),
		bucketCount: uint64(bucketCount),
		segSize:     windowSeconds,
	}
	for i := 0; i < bucketCount; i++ {
		tc.buckets[i] = &trafficBucket{counters: make(map[uint64]*trafficElement)}
	}
	return tc
}

func (tc *TrafficCounter) getBucket(hashKey uint64) *trafficBucket {
	return tc.buckets[hashKey%tc.bucketCount]
}

// Observe counts one datagram from the given peer.
func (tc *TrafficCounter) Observe(ep Endpoint) {
	now := time.Now().Unix()
	hashKey := xxhash.Sum64String(ep.String())
	bucket := tc.getBucket(hashKey)
	bucket.mu.Lock()
	defer bucket.mu.Unlock()
	counter, exists := bucket.counters[hashKey]
	if !exists {
		counter = newTrafficElement(int(tc.segSize))
		bucket.counters[hashKey] = counter
	}
	counter.add(now, 1)
}

// Rate returns how many datagrams the peer sent in the last window seconds.
func (tc *TrafficCounter) Rate(ep Endpoint, window int64) int64 {
	now := time.Now().Unix()
	hashKey := xxhash.Sum64String(ep.String())
	bucket := tc.getBucket(hashKey)
	bucket.mu.RLock()
	defer bucket.mu.RUnlock()
	if counter, exists := bucket.counters[hashKey]; exists {
		return counter.query(window, now)
	}
	return 0
}

// GC drops counters for peers that have been silent for a full window.
func (tc *TrafficCounter) GC() {
	expireThreshold := time.Now().Unix() - tc.segSize
	for _, bucket := range tc.buckets {
		bucket.mu.Lock()
		for key, counter := range bucket.counters {
			if counter.lastUpdated < expireThreshold {
				delete(bucket.counters, key)
			}
		}
		bucket.mu.Unlock()
	}
}
