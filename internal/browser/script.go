package browser

import (
	"fmt"
	"strconv"
)

// The EHR's pages are a mix of Angular grids and legacy frames, so element
// lookup happens in page JavaScript: it can match on text content where no
// stable CSS hook exists, and it sees through dynamically rendered rows.

const resolverJS = `
function __resolve(sel) {
	function visible(el) {
		var r = el.getBoundingClientRect();
		return r.width > 0 && r.height > 0;
	}
	var el = null;
	if (sel.indexOf('text*=') === 0) {
		var part = sel.slice(6);
		var cands = document.querySelectorAll('a, button, td, th, span, div, input, h4');
		for (var i = 0; i < cands.length; i++) {
			var t = (cands[i].textContent || '').trim();
			var v = cands[i].value || '';
			if ((t.indexOf(part) !== -1 || v.indexOf(part) !== -1) && visible(cands[i])) { el = cands[i]; break; }
		}
	} else if (sel.indexOf('text=') === 0) {
		var want = sel.slice(5);
		var cands = document.querySelectorAll('a, button, td, th, span, div, input, h4');
		for (var i = 0; i < cands.length; i++) {
			var t = (cands[i].textContent || '').trim();
			var v = cands[i].value || '';
			if ((t === want || v === want) && visible(cands[i])) { el = cands[i]; break; }
		}
	} else if (sel.indexOf('nth=') === 0) {
		var bar = sel.indexOf('|');
		var n = parseInt(sel.slice(4, bar), 10);
		var all = document.querySelectorAll(sel.slice(bar + 1));
		if (all[n] && visible(all[n])) { el = all[n]; }
	} else {
		var found = document.querySelector(sel);
		if (found && visible(found)) { el = found; }
	}
	return el;
}
`

func clickScript(selector string) string {
	return fmt.Sprintf(`(function() {
%s
	var el = __resolve(%s);
	if (!el) { return false; }
	el.click();
	return true;
})()`, resolverJS, strconv.Quote(selector))
}

func fillScript(selector, value string) string {
	return fmt.Sprintf(`(function() {
%s
	var el = __resolve(%s);
	if (!el) { return false; }
	el.focus();
	el.value = '';
	el.value = %s;
	el.dispatchEvent(new Event('input', {bubbles: true}));
	el.dispatchEvent(new Event('change', {bubbles: true}));
	return true;
})()`, resolverJS, strconv.Quote(selector), strconv.Quote(value))
}

func selectScript(selector, label string) string {
	return fmt.Sprintf(`(function() {
%s
	var el = __resolve(%s);
	if (!el || !el.options) { return false; }
	var want = %s;
	for (var i = 0; i < el.options.length; i++) {
		if (el.options[i].text.trim() === want) {
			el.selectedIndex = i;
			el.dispatchEvent(new Event('change', {bubbles: true}));
			return true;
		}
	}
	return false;
})()`, resolverJS, strconv.Quote(selector), strconv.Quote(label))
}

const framesScript = `(function() {
	var out = [];
	var frames = document.querySelectorAll('iframe');
	for (var i = 0; i < frames.length; i++) {
		out.push({
			index: i,
			id: frames[i].id || '',
			name: frames[i].name || '',
			src: frames[i].getAttribute('src') || ''
		});
	}
	return out;
})()`

func frameHTMLScript(index int) string {
	return fmt.Sprintf(`(function() {
	var frames = document.querySelectorAll('iframe');
	var f = frames[%d];
	if (!f) { return ''; }
	try {
		if (f.contentDocument && f.contentDocument.documentElement) {
			return f.contentDocument.documentElement.outerHTML;
		}
	} catch (e) {}
	return '';
})()`, index)
}
