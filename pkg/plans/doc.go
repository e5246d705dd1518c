// Package plans defines service plans and the catalog subscribers are assigned from.
//
// A catalog is ordered and fixed for the life of the process. The first plan is
// the default: records whose stored plan name is unknown resolve to it.
//
//	catalog := plans.DefaultCatalog()
//	basic, _ := catalog.ByIndex(1)          // 1-based, as shown in menus
//	plan, found := catalog.Lookup("Turbo")  // falls back to the default plan
//
// Catalogs can also be loaded from YAML:
//
//	plans:
//	  - name: Basic
//	    minutes: 10
//	    data_gb: 5
//	    sms: 2
//	  - name: Unlimited
package plans
