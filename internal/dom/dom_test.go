package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!DOCTYPE html>
<html><body>
  <nav id="menu" class="menu closed">
    <a class="item" href="#a">A</a>
    <a class="item" href="#b">B</a>
  </nav>
  <input id="agree" type="checkbox" checked>
</body></html>`

func mustParse(t *testing.T, s string) *Document {
	t.Helper()
	doc, err := ParseString(s)
	require.NoError(t, err)
	return doc
}

func TestQuery_Selectors(t *testing.T) {
	doc := mustParse(t, page)

	assert.Len(t, doc.Query(".item"), 2)
	assert.Len(t, doc.Query("#menu"), 1)
	assert.Len(t, doc.Query("nav .item, #agree"), 3)
	assert.Empty(t, doc.Query(""))
	assert.Empty(t, doc.Query("[[["), "invalid selectors resolve to nothing")
}

func TestQuery_PseudoElements(t *testing.T) {
	doc := mustParse(t, page)

	win := doc.Query("window")
	require.Len(t, win, 1)
	assert.Same(t, doc.Window(), win[0])
	assert.Equal(t, KindWindow, win[0].Kind())

	d := doc.Query("document")
	require.Len(t, d, 1)
	assert.Same(t, doc.DocumentElement(), d[0])
}

func TestQuery_ReturnsStableWrappers(t *testing.T) {
	doc := mustParse(t, page)
	assert.Same(t, doc.First("#menu"), doc.First("nav"))
}

func TestElement_Attributes(t *testing.T) {
	doc := mustParse(t, page)
	menu := doc.First("#menu")

	class, ok := menu.Attr("class")
	require.True(t, ok)
	assert.Equal(t, "menu closed", class)

	menu.SetAttr("class", "menu open")
	menu.SetAttr("aria-expanded", "true")
	v, _ := menu.Attr("class")
	assert.Equal(t, "menu open", v)
	assert.True(t, menu.HasAttr("aria-expanded"))

	menu.RemoveAttr("aria-expanded")
	assert.False(t, menu.HasAttr("aria-expanded"))
	assert.Equal(t, "nav#menu.menu.open", menu.String())
}

func TestElement_PseudoElementsIgnoreAttributes(t *testing.T) {
	doc := mustParse(t, page)
	doc.Window().SetAttr("class", "x")
	assert.False(t, doc.Window().HasAttr("class"))
}

func TestElement_BooleanPropertyFallsBackToAttribute(t *testing.T) {
	doc := mustParse(t, page)
	agree := doc.First("#agree")

	assert.True(t, agree.Property("checked"))
	agree.SetProperty("checked", false)
	assert.False(t, agree.Property("checked"))
	assert.True(t, agree.HasAttr("checked"), "property writes leave the attribute alone")
	assert.True(t, IsBooleanProperty("disabled"))
	assert.False(t, IsBooleanProperty("class"))
}

func TestElement_ParentChain(t *testing.T) {
	doc := mustParse(t, page)
	item := doc.First(".item")

	var chain []string
	for p := item.Parent(); p != nil; p = p.Parent() {
		chain = append(chain, p.Tag())
	}
	assert.Equal(t, []string{"nav", "body", "html", "#document", "window"}, chain)
}

func TestElement_Matches(t *testing.T) {
	doc := mustParse(t, page)
	item := doc.First(".item")

	assert.True(t, item.Matches("nav > a.item"))
	assert.False(t, item.Matches("#menu"))
	assert.False(t, item.Matches("]"))
	assert.True(t, doc.Window().Matches("window"))
	assert.False(t, doc.Window().Matches("body"))
}

func TestTrigger_BubblesToWindow(t *testing.T) {
	doc := mustParse(t, page)
	item := doc.First(".item")

	var seen []string
	item.On("click", func(ev *Event) { seen = append(seen, "item") })
	doc.First("#menu").On("click", func(ev *Event) { seen = append(seen, "menu") })
	doc.Window().On("click", func(ev *Event) {
		seen = append(seen, "window")
		assert.Same(t, item, ev.Target)
	})

	item.Trigger("click", nil)
	assert.Equal(t, []string{"item", "menu", "window"}, seen)
}

func TestTrigger_StopPropagation(t *testing.T) {
	doc := mustParse(t, page)
	item := doc.First(".item")
	reached := false
	item.On("click", func(ev *Event) { ev.StopPropagation() })
	doc.Body().On("click", func(ev *Event) { reached = true })

	ev := item.Trigger("click", nil)
	assert.True(t, ev.Stopped())
	assert.False(t, reached)
}

func TestOn_MultipleEventNames(t *testing.T) {
	doc := mustParse(t, page)
	count := 0
	doc.Body().On("touchend  touchcancel", func(ev *Event) { count++ })

	doc.Body().Trigger("touchend", nil)
	doc.Body().Trigger("touchcancel", nil)
	assert.Equal(t, 2, count)
	assert.Equal(t, 1, doc.Body().ListenerCount("touchend"))
}

func TestDelegate_MatchesTargetOnly(t *testing.T) {
	doc := mustParse(t, page)
	var targets []string
	doc.Body().Delegate(".item", "click", func(ev *Event) {
		targets = append(targets, ev.Target.String())
	})

	doc.Query(".item")[1].Trigger("click", nil)
	doc.First("#menu").Trigger("click", nil)
	assert.Equal(t, []string{"a.item"}, targets)
}

func TestObserve_SeesEveryDispatch(t *testing.T) {
	doc := mustParse(t, page)
	var types []string
	doc.Observe(func(ev *Event) { types = append(types, ev.Type) })

	doc.First("#agree").Trigger("change", nil)
	doc.Window().Trigger("scroll", nil)
	assert.Equal(t, []string{"change", "scroll"}, types)
}

func TestScrollMetrics(t *testing.T) {
	doc := mustParse(t, page)
	win := doc.Window()
	assert.False(t, win.Scroll().Measurable())

	win.SetScroll(ScrollMetrics{Top: 0, Viewport: 600, Content: 2000})
	win.ScrollTo(120)
	assert.Equal(t, ScrollMetrics{Top: 120, Viewport: 600, Content: 2000}, win.Scroll())
	assert.True(t, win.Scroll().Measurable())
}

func TestHTML_RendersMutations(t *testing.T) {
	doc := mustParse(t, `<html><body><p id="x"></p></body></html>`)
	doc.First("#x").SetAttr("class", "on")

	out, err := doc.HTML()
	require.NoError(t, err)
	assert.Contains(t, out, `<p id="x" class="on"></p>`)
}
