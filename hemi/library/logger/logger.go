// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Logger writes time-stamped lines to a file without blocking its callers on disk I/O.

package logger

import (
	"fmt"
	"os"
	"sync"
	"time"
)

const TimeFormat = "[2006-01-02 15:04:05.000] "

const (
	ticksInterval = 47 * time.Millisecond // refresh the cached time
	savesInterval = 97 * time.Millisecond // swap queues and save the dirty one
	maxQueueSize  = 16 << 20              // logs beyond this per interval are dropped
	keepQueueSize = 64 << 10              // queues larger than this are shrunk after saving
)

// Logger
type Logger struct {
	// States
	filePath string   // file prefix indeed
	rotate   string   // "", "day", "hour"
	failPath string   // absPath that failed to open. retried when the path changes
	absPath  string   // absolute file path (with suffix)
	osFile   *os.File // opened file cache for absPath

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{} // closed when saver exits

	mutex    sync.Mutex // protects following
	queueOne *logQueue
	queueTwo *logQueue
	qCurrent *logQueue  // nil after close
	dropped  int64      // bytes dropped due to full queue

	nowLock sync.RWMutex
	now     []byte
}

// New creates a logger appending to filePath.
// rotate may be "day" or "hour", which suffixes filePath with the current date (and hour).
func New(filePath string, rotate string) *Logger {
	l := new(Logger)
	l.filePath = filePath
	l.rotate = rotate
	l.stop = make(chan struct{})
	l.done = make(chan struct{})
	l.queueOne = new(logQueue)
	l.queueTwo = new(logQueue)
	l.qCurrent = l.queueOne
	l.now = make([]byte, 0, len(TimeFormat))
	l.setTime()
	go l.ticker()
	go l.saver()
	return l
}

func (l *Logger) setTime() {
	t := time.Now()
	l.nowLock.Lock()
	l.now = t.AppendFormat(l.now[:0], TimeFormat)
	l.nowLock.Unlock()
}
func (l *Logger) ticker() { // runner
	ticker := time.NewTicker(ticksInterval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.setTime()
		}
	}
}

func (l *Logger) Log(s string)   { l.log(s, false) }
func (l *Logger) Logln(s string) { l.log(s, true) }
func (l *Logger) Logf(f string, v ...any) {
	l.log(fmt.Sprintf(f, v...), false)
}

func (l *Logger) log(s string, newline bool) {
	l.nowLock.RLock()
	defer l.nowLock.RUnlock()
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if q := l.qCurrent; q != nil {
		if !q.log(l.now, s, newline) {
			l.dropped += int64(len(s))
		}
	}
}

// Dropped returns the number of bytes dropped so far.
func (l *Logger) Dropped() int64 {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.dropped
}

func (l *Logger) saver() { // runner
	defer close(l.done)
	ticker := time.NewTicker(savesInterval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			l.mutex.Lock()
			final := l.qCurrent
			l.qCurrent = nil
			l.mutex.Unlock()
			l.save(final, time.Now())
			if l.osFile != nil {
				l.osFile.Close()
				l.osFile = nil
			}
			return
		case <-ticker.C:
			l.mutex.Lock()
			dirty := l.qCurrent
			if dirty == l.queueOne {
				l.qCurrent = l.queueTwo
			} else {
				l.qCurrent = l.queueOne
			}
			l.mutex.Unlock()
			l.save(dirty, time.Now())
		}
	}
}

func (l *Logger) save(queue *logQueue, now time.Time) {
	if queue.isEmpty() {
		return
	}
	defer queue.reset()
	absPath := l.filePath
	switch l.rotate {
	case "day":
		absPath += "." + now.Format("2006-01-02")
	case "hour":
		absPath += "." + now.Format("2006-01-02.15")
	}
	if absPath == l.failPath {
		return
	}
	if l.absPath != absPath {
		if l.osFile != nil {
			l.osFile.Close()
			l.osFile = nil
		}
		file, err := os.OpenFile(absPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
		if err != nil {
			l.absPath = ""
			l.failPath = absPath
			return
		}
		l.absPath = absPath
		l.failPath = ""
		l.osFile = file
	}
	queue.saveTo(l.osFile)
}

// Close flushes pending logs and closes the file. Logs after Close are discarded.
func (l *Logger) Close() {
	l.stopOnce.Do(func() { close(l.stop) })
	<-l.done
}

// logQueue
type logQueue struct {
	logs []byte
}

func (q *logQueue) log(now []byte, s string, newline bool) bool {
	size := len(now) + len(s)
	if newline {
		size++
	}
	if len(q.logs)+size > maxQueueSize {
		return false
	}
	q.logs = append(q.logs, now...)
	q.logs = append(q.logs, s...)
	if newline {
		q.logs = append(q.logs, '\n')
	}
	return true
}

func (q *logQueue) isEmpty() bool { return len(q.logs) == 0 }

func (q *logQueue) saveTo(file *os.File) {
	if _, err := file.Write(q.logs); err == nil {
		file.Sync()
	}
}

func (q *logQueue) reset() {
	if cap(q.logs) > keepQueueSize {
		q.logs = nil
	} else {
		q.logs = q.logs[:0]
	}
}
