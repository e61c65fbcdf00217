package common

import "time"

var Version = "v0.3.0"

var StartTime = time.Now().Unix()
