package scanner

import (
	"context"
	"fmt"
	"strings"
	"sync"

	pkgerrors "github.com/angelmondragon/scancart-backend/pkg/errors"
	"github.com/angelmondragon/scancart-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/scancart-backend/pkg/redis"
)

type subscriber interface {
	Subscribe(ctx context.Context, channels ...string) (pkgredis.Subscription, error)
	ScannerChannel(deviceID, topic string) string
}

type publisher interface {
	Publish(ctx context.Context, channel string, message any) error
	ScannerChannel(deviceID, topic string) string
}

// BusDecoder receives codes from a scanning device over redis pub/sub, on
// scancart:scanner:{device}:decoded.
type BusDecoder struct {
	sub      subscriber
	deviceID string
	logg     *logger.Logger

	mu   sync.Mutex
	live pkgredis.Subscription
	stop chan struct{}
	done chan struct{}
}

func NewBusDecoder(sub subscriber, deviceID string, logg *logger.Logger) (*BusDecoder, error) {
	if sub == nil {
		return nil, fmt.Errorf("redis subscriber required")
	}
	if strings.TrimSpace(deviceID) == "" {
		return nil, fmt.Errorf("scanner device id required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &BusDecoder{sub: sub, deviceID: deviceID, logg: logg}, nil
}

func (b *BusDecoder) Activate(ctx context.Context, container string, onDecode func(code string)) error {
	if onDecode == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "decode callback is required")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.live != nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "scanner already active")
	}

	channel := b.sub.ScannerChannel(b.deviceID, topicDecoded)
	live, err := b.sub.Subscribe(ctx, channel)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "subscribe to scanner")
	}

	b.live = live
	b.stop = make(chan struct{})
	b.done = make(chan struct{})

	logCtx := b.logg.WithFields(context.WithoutCancel(ctx), map[string]any{"channel": channel, "container": container})
	b.logg.Info(logCtx, "scanner bus subscribed")
	go b.read(logCtx, live, onDecode, b.stop, b.done)
	return nil
}

// read forwards decoded codes until stopped. onDecode runs on its own
// goroutine since it typically calls back into Deactivate.
func (b *BusDecoder) read(ctx context.Context, live pkgredis.Subscription, onDecode func(string), stop, done chan struct{}) {
	defer close(done)
	msgs := live.Channel()
	for {
		select {
		case <-stop:
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			code := strings.TrimSpace(msg.Payload)
			if code == "" {
				b.logg.Debug(ctx, "ignoring empty scanner payload")
				continue
			}
			go onDecode(code)
		}
	}
}

// Deactivate closes the subscription and waits for the reader to exit.
func (b *BusDecoder) Deactivate() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.live == nil {
		return nil
	}
	close(b.stop)
	err := b.live.Close()
	<-b.done
	b.live, b.stop, b.done = nil, nil, nil
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close scanner subscription")
	}
	return nil
}

// BusCue asks the scanning device to beep.
type BusCue struct {
	pub      publisher
	deviceID string
}

func NewBusCue(pub publisher, deviceID string) (*BusCue, error) {
	if pub == nil {
		return nil, fmt.Errorf("redis publisher required")
	}
	if strings.TrimSpace(deviceID) == "" {
		return nil, fmt.Errorf("scanner device id required")
	}
	return &BusCue{pub: pub, deviceID: deviceID}, nil
}

func (c *BusCue) Play(ctx context.Context) error {
	return c.pub.Publish(ctx, c.pub.ScannerChannel(c.deviceID, topicCue), cuePayload)
}
