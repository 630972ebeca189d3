package acceptance_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/smartwalle/loadsync"
	"github.com/smartwalle/loadsync/acceptance"
	"github.com/stretchr/testify/require"
)

const (
	eventLoadFinished = "loadFinished"
	kindWebPage       = "QWebPage"
	kindHelpViewer    = "Help::Internal::HelpViewer"
	helpCombo         = ":Qt Creator_HelpSelector_QComboBox"
)

type load struct {
	source string
	kind   string
}

// standardLoads is what opening a help page produces: two web pages and two
// help viewers finish loading, plus an unrelated widget.
var standardLoads = []load{
	{":QWebPage", kindWebPage},
	{":Qt Creator_Help::Internal::HelpViewer", kindHelpViewer},
	{":QWebPage", "QLabel"},
	{":QWebPage", kindWebPage},
	{":Main Qt Creator_Help::Internal::HelpViewer", kindHelpViewer},
}

type page struct {
	title string
	loads []load
}

// fakeApp stands in for the application under test. Clicking a help link
// changes the combo box text and fires load notifications on another
// goroutine. Clicking a welcome page link only makes objects appear.
type fakeApp struct {
	mu       sync.Mutex
	center   *loadsync.Center[bool]
	pages    map[string]page
	objects  map[string]bool
	links    map[string][]string
	combo    string
	menus    [][]string
	clickErr map[string]error
}

func newFakeApp(t *testing.T) *fakeApp {
	var app = &fakeApp{
		center: loadsync.New[bool](loadsync.WithCenterLogger(discardLogger())),
		pages: map[string]page{
			"LinkedText text='User Guide'": {"QtCreator : Qt Creator Manual", standardLoads},
			"Text text='IDE Overview'":     {"QtCreator : IDE Overview", standardLoads},
			"Text text='User Interface'":   {"QtCreator : User Interface", standardLoads},
			"Text text='Building and Running an Example Application'": {
				"QtCreator : Building and Running an Example", standardLoads,
			},
		},
		objects: map[string]bool{
			"Text text='Getting Started'":        true,
			"LinkedText text='Online Community'": true,
			"LinkedText text='Blogs'":            true,
		},
		links: map[string][]string{
			"LinkedText text='Getting Started'": {"Text text='Getting Started'"},
			"Text text='Start Developing'":      {"Text text='Tutorials'"},
		},
		clickErr: map[string]error{},
	}
	t.Cleanup(app.center.Close)
	return app
}

func (this *fakeApp) Exists(_ context.Context, descriptor string) bool {
	this.mu.Lock()
	defer this.mu.Unlock()
	return this.objects[descriptor]
}

func (this *fakeApp) Click(_ context.Context, descriptor string) error {
	this.mu.Lock()
	if err := this.clickErr[descriptor]; err != nil {
		this.mu.Unlock()
		return err
	}
	if reveals, ok := this.links[descriptor]; ok {
		for _, object := range reveals {
			this.objects[object] = true
		}
		this.mu.Unlock()
		return nil
	}
	var p, ok = this.pages[descriptor]
	if ok == false {
		this.mu.Unlock()
		return fmt.Errorf("object not found: %s", descriptor)
	}
	this.combo = p.title
	this.mu.Unlock()

	go func() {
		for _, l := range p.loads {
			time.Sleep(2 * time.Millisecond)
			this.center.Post(eventLoadFinished, l.source, l.kind, true)
		}
	}()
	return nil
}

func (this *fakeApp) Property(_ context.Context, descriptor, name string) (string, error) {
	if descriptor != helpCombo || name != "currentText" {
		return "", fmt.Errorf("no property %s on %s", name, descriptor)
	}
	this.mu.Lock()
	defer this.mu.Unlock()
	return this.combo, nil
}

func (this *fakeApp) InvokeMenu(_ context.Context, path ...string) error {
	this.mu.Lock()
	defer this.mu.Unlock()
	this.menus = append(this.menus, path)
	return nil
}

func (this *fakeApp) invokedMenus() [][]string {
	this.mu.Lock()
	defer this.mu.Unlock()
	return append([][]string(nil), this.menus...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newSynchronizer registers the two help viewer sources on the app's center.
func newSynchronizer(t *testing.T, app *fakeApp) *loadsync.Synchronizer {
	var s = loadsync.NewSynchronizer(
		loadsync.WithKinds(kindWebPage, kindHelpViewer),
		loadsync.WithLogger(discardLogger()),
	)
	var _, err = s.Register(app.center, ":QWebPage", eventLoadFinished)
	require.NoError(t, err)
	_, err = s.Register(app.center, ":*Qt Creator_Help::Internal::HelpViewer", eventLoadFinished)
	require.NoError(t, err)
	return s
}

func mustScenario(t *testing.T, doc string) *acceptance.Scenario {
	t.Helper()
	var scenario, err = acceptance.LoadScenario(strings.NewReader(doc))
	require.NoError(t, err)
	return scenario
}
