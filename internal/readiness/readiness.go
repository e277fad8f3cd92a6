// Package readiness defines the signal a rendered document raises once its
// content is final, and the browser-side scripts that raise and observe it.
//
// The mount point is an element with id RootID that is present on first
// paint. Its ReadyAttr attribute starts as "false" and flips to "true" only
// after the resume content is in the tree and web fonts have loaded.
package readiness

import "fmt"

const (
	RootID    = "resume-root"
	ReadyAttr = "data-resume-ready"
	// ErrorAttr is set on the mount point when the document cannot mount
	// its content. It holds the HTTP status or "fetch".
	ErrorAttr = "data-resume-error"

	// Storage keys the print route reads its snapshot from.
	StorageSnapshotKey = "resume:snapshot"
	StorageTemplateKey = "resume:template"
	StorageModeKey     = "resume:mode"

	// FragmentPath serves the assembled pieces to the print route.
	FragmentPath = "/print/fragment"
)

// States reported by StateExpression.
const (
	StateAbsent  = "absent"
	StatePending = "pending"
	StateReady   = "ready"
	StateError   = "error"
)

// StateExpression evaluates to one of the State constants. A mount error
// wins over the ready flag.
var StateExpression = fmt.Sprintf(`(() => {
  const el = document.getElementById(%[1]q);
  if (!el) return %[2]q;
  if (el.hasAttribute(%[3]q)) return %[4]q;
  return el.getAttribute(%[5]q) === "true" ? %[6]q : %[7]q;
})()`, RootID, StateAbsent, ErrorAttr, StateError, ReadyAttr, StateReady, StatePending)

// ImagesExpression resolves once every image has loaded or failed. The
// result is the source of the first image that failed, or "".
const ImagesExpression = `Promise.all(Array.from(document.images).map(img => {
  if (img.complete) return Promise.resolve(img.naturalWidth === 0 && img.src ? img.src : "");
  return new Promise(resolve => {
    img.addEventListener("load", () => resolve(""), { once: true });
    img.addEventListener("error", () => resolve(img.src), { once: true });
  });
})).then(results => results.find(r => r !== "") || "")`

// signalFn is shared by both injection strategies. It waits for font faces
// and one animation frame before flipping the flag.
var signalFn = fmt.Sprintf(`function __resumeSignalReady() {
  const el = document.getElementById(%q);
  if (!el) return;
  const fonts = document.fonts && document.fonts.ready ? document.fonts.ready : Promise.resolve();
  fonts.then(() => requestAnimationFrame(() => el.setAttribute(%q, "true")));
}`, RootID, ReadyAttr)

// InlineScript is placed right after the mount point of a fully assembled
// document, where content is already in the tree.
var InlineScript = signalFn + `
if (document.readyState === "loading") {
  document.addEventListener("DOMContentLoaded", __resumeSignalReady);
} else {
  __resumeSignalReady();
}`

// PrintRouteScript drives the print route: it reads the preloaded snapshot
// from localStorage, fetches the assembled pieces and mounts them. The flag
// is only raised after the content is in the tree.
var PrintRouteScript = signalFn + fmt.Sprintf(`
(async () => {
  const root = document.getElementById(%[1]q);
  const params = new URLSearchParams(location.search);
  const template = params.get("template") || localStorage.getItem(%[2]q) || "";
  const mode = params.get("mode") || localStorage.getItem(%[3]q) || "";
  const body = localStorage.getItem(%[4]q) || "{}";
  let res;
  try {
    res = await fetch(%[5]q + "?template=" + encodeURIComponent(template) + "&mode=" + encodeURIComponent(mode), {
      method: "POST",
      headers: { "Content-Type": "application/json" },
      body: body,
    });
  } catch (e) {
    root.setAttribute(%[6]q, "fetch");
    return;
  }
  if (!res.ok) {
    root.setAttribute(%[6]q, String(res.status));
    return;
  }
  const frag = await res.json();
  document.title = frag.title;
  const style = document.createElement("style");
  style.textContent = frag.css;
  document.head.appendChild(style);
  root.setAttribute("data-template", template);
  root.innerHTML = frag.html;
  __resumeSignalReady();
})();`, RootID, StorageTemplateKey, StorageModeKey, StorageSnapshotKey, FragmentPath, ErrorAttr)

// PreloadScript seeds localStorage before any page script runs. Values are
// JSON-encoded by the caller.
func PreloadScript(entries map[string]string) string {
	s := "(() => {\n"
	for k, v := range entries {
		s += fmt.Sprintf("  localStorage.setItem(%q, %q);\n", k, v)
	}
	return s + "})();"
}
