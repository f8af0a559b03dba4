package assemble

// Registry runtime emitted ahead of the module registrations in the
// synthetic entry. Exposed modules are never imported statically by the
// application; runtime code reaches them through the single lookup
// function, keyed by the stable exposed name.
const registryRuntime = `
var __bundledModules = new Map();

function __registerBundledModule(id, factory) {
  __bundledModules.set(id, factory);
}

function __lookupBundledModule(id) {
  var factory = __bundledModules.get(id);
  if (!factory) {
    throw new Error('module not found: ' + id);
  }
  return factory();
}

if (typeof globalThis !== 'undefined') {
  globalThis.__lookupBundledModule = __lookupBundledModule;
}
`
