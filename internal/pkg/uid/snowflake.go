package uid

import (
	"hash/fnv"
	"os"

	"github.com/bwmarrin/snowflake"
)

// Snowflake generates time-ordered int64 IDs using a node derived from the hostname.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake creates a Snowflake generator with a hostname-derived node ID.
func NewSnowflake() (*Snowflake, error) {
	host, err := os.Hostname()
	if err != nil {
		host = "goseed"
	}

	h := fnv.New32a()
	if _, err := h.Write([]byte(host)); err != nil {
		return nil, err
	}

	// snowflake node IDs are 10 bits
	node, err := snowflake.NewNode(int64(h.Sum32() % 1024))
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: node}, nil
}

// Generate returns a new int64 snowflake ID.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}
