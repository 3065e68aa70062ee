package actions

import (
	"strings"
	"sync"
)

// ConnectionObject should be constructed with public property ConnectionObject set using format:
// <connection>[.<object>]
// For a source connection the object is a database name. For a Snowflake target it is a schema name.
type ConnectionObject struct {
	ConnectionObject string `errorTxt:"<connection>[.<database or schema>]" mandatory:"yes"`
	connection       string
	object           string
	done             bool
	mu               sync.Mutex
}

func NewConnectionObject(s string) *ConnectionObject {
	return &ConnectionObject{ConnectionObject: s}
}

func (c *ConnectionObject) GetConnectionName() string {
	c.splitConnectString()
	return c.connection
}

func (c *ConnectionObject) GetObject() string {
	c.splitConnectString()
	return c.object
}

// splitConnectString will split the input string at the first period into connection and object.
// If the object is missing from the input then return the whole string as the connection.
func (c *ConnectionObject) splitConnectString() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.done {
		i := strings.Index(c.ConnectionObject, ".")
		if i > 0 {
			c.connection = c.ConnectionObject[:i]
			c.object = c.ConnectionObject[i+1:]
		} else {
			c.connection = c.ConnectionObject
			// we can't find object so it is returned as ""
		}
		if c.ConnectionObject != "" { // if struct was constructed with a valid ConnectionObject...
			c.done = true // flag that we're done doing the split.
		}
	}
}
