package internal

import (
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/Dpeta/pesterchum-alt-servers-sub000/quirks"
	"github.com/Dpeta/pesterchum-alt-servers-sub000/session"
	"github.com/Dpeta/pesterchum-alt-servers-sub000/split"
	"github.com/Dpeta/pesterchum-alt-servers-sub000/types"
	"github.com/Dpeta/pesterchum-alt-servers-sub000/types/lexchum"
)

const (
	systemPrefix = "PESTERCHUM:"
	actionPrefix = "/me"
)

var ErrNothingToSend = errors.New("error: nothing to send")

// Outgoing is one processed input line.
type Outgoing struct {
	// Chunks are sent to the server in order. The quirk tester sends
	// nothing, so it leaves this empty.
	Chunks []string
	// Display is what the sender's own window shows for each chunk, as HTML.
	Display []string

	Action bool
	OOC    bool
}

// Bytes is the total size of Chunks.
func (o *Outgoing) Bytes() int {
	n := 0
	for _, c := range o.Chunks {
		n += len(c)
	}
	return n
}

// Pipeline turns what the user typed into the messages sent for it:
// quirks, formatting cleanup and splitting.
type Pipeline struct {
	conf    *Config
	profile *Profile
	tester  *quirks.Collection
	fns     *quirks.Functions
	rnd     *quirks.Rand
	lexer   *lexchum.Lexer
	metrics *Metrics
}

// NewPipeline returns a Pipeline applying profile's quirks with the
// functions in fns. fns may be nil.
func NewPipeline(conf *Config, profile *Profile, fns *quirks.Functions) *Pipeline {
	return &Pipeline{
		conf:    conf,
		profile: profile,
		tester:  quirks.NewCollection(),
		fns:     fns,
		rnd:     quirks.NewRand(conf.Seed),
		lexer:   lexchum.Default(),
		metrics: NewMetrics(),
	}
}

// SetTesterQuirks sets the quirks used by the quirk tester flavor.
func (p *Pipeline) SetTesterQuirks(c *quirks.Collection) { p.tester = c }

func (p *Pipeline) Metrics() *Metrics { return p.metrics }

func (p *Pipeline) env() *quirks.Env {
	env := quirks.NewEnv(p.fns, p.rnd)
	env.Lexer = p.lexer
	return env
}

func (p *Pipeline) maxLength(sess *session.Session) int {
	switch sess.Flavor {
	case session.FlavorConvo:
		return p.conf.ConvoMaxLength
	case session.FlavorMemo:
		return split.MaxMessageLength(p.profile.Handle, p.conf.Ident, sess.Target) - p.conf.MemoReserve
	}
	return split.MaxMessageLength(p.profile.Handle, p.conf.Ident, sess.Target)
}

// Process runs text through quirks and splits it for sess. A quirk failure
// aborts the whole line and nothing is returned for it.
func (p *Pipeline) Process(sess *session.Session, text string) (*Outgoing, error) {
	msg := strings.TrimSpace(text)
	if msg == "" || strings.HasPrefix(msg, systemPrefix) {
		return nil, ErrNothingToSend
	}

	if sess.History == nil {
		sess.History = session.NewHistory()
	}
	sess.History.Add(text)
	p.metrics.Counter("pipeline", "messages").Inc(1)

	oocDetected := IsOOC(msg)
	isOOC, shouldQuirk := false, true
	coll := p.profile.Quirks
	if sess.Flavor == session.FlavorMenus {
		coll = p.tester
	} else {
		isOOC = sess.OOC || oocDetected
		if isOOC && !oocDetected {
			msg = fmt.Sprintf("(( %s ))", msg)
		}
		shouldQuirk = sess.ApplyQuirks
	}
	isAction := strings.HasPrefix(msg, actionPrefix)

	if shouldQuirk && !(isAction || isOOC) {
		quirked, err := coll.Apply(p.env(), p.lexer.Lex(msg))
		if err != nil {
			p.metrics.Counter("pipeline", "quirk_failures").Inc(1)
			log.WithError(err).WithField("target", sess.Target).Warn("error applying quirks")
			return nil, err
		}
		msg = quirked.FormatText(types.CTagFmt)
	}
	log.Debugf("processed message: %q", msg)

	segs := p.lexer.Lex(msg)
	if isAction {
		segs = lexchum.StripColors(segs)
	}

	var initials, color string
	if sess.Flavor == session.FlavorMemo {
		initials, color = p.profile.Initials(), p.profile.ColorCmd()
	}

	out := &Outgoing{Action: isAction, OOC: isOOC}
	sent := 0
	for _, chunk := range split.Split(segs, types.CTagFmt, p.maxLength(sess)) {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		if isAction && sent > 0 {
			chunk = actionPrefix + " " + chunk
		}

		client, server := chunk, chunk
		if sess.Flavor == session.FlavorMemo && !isAction {
			client = fmt.Sprintf("<c=%s>%s%s%s: %s</c>", color, sess.Time.PCF(), initials, sess.Time.Suffix(), chunk)
			server = fmt.Sprintf("<c=%s>%s: %s</c>", color, initials, chunk)
		}

		out.Display = append(out.Display, p.lexer.Lex(client).FormatText(types.HTMLFmt))
		if sess.Flavor != session.FlavorMenus {
			out.Chunks = append(out.Chunks, server)
		}
		sent++
	}
	if sent == 0 {
		return nil, ErrNothingToSend
	}

	p.metrics.Counter("pipeline", "chunks").Inc(int64(len(out.Chunks)))
	p.metrics.Counter("pipeline", "bytes").Inc(int64(out.Bytes()))
	return out, nil
}
