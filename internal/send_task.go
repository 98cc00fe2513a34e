package internal

import (
	"strconv"

	"github.com/Dpeta/pesterchum-alt-servers-sub000/session"
)

// SendTask processes one input line for a session.
type SendTask struct {
	*BaseTask

	pipeline *Pipeline
	sess     *session.Session
	text     string
	out      *Outgoing
}

func NewSendTask(p *Pipeline, sess *session.Session, text string) *SendTask {
	return &SendTask{
		BaseTask: &BaseTask{},

		pipeline: p,
		sess:     sess,
		text:     text,
	}
}

func (t *SendTask) Run() error {
	defer t.Done()
	t.SetState(TaskStateRunning)

	out, err := t.pipeline.Process(t.sess, t.text)
	if err != nil {
		return t.Fail(err)
	}
	t.out = out

	t.SetData("target", t.sess.Target)
	t.SetData("chunks", strconv.Itoa(len(out.Chunks)))
	t.SetData("bytes", strconv.Itoa(out.Bytes()))
	return nil
}

// Outgoing is the processed line, nil until Run succeeds.
func (t *SendTask) Outgoing() *Outgoing { return t.out }
