/*******************************************************************************
*
* Copyright 2015 Stefan Majewsky <majewsky@gmx.net>
*
* This file is part of Holo.
*
* Holo is free software: you can redistribute it and/or modify it under the
* terms of the GNU General Public License as published by the Free Software
* Foundation, either version 3 of the License, or (at your option) any later
* version.
*
* Holo is distributed in the hope that it will be useful, but WITHOUT ANY
* WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS FOR
* A PARTICULAR PURPOSE. See the GNU General Public License for more details.
*
* You should have received a copy of the GNU General Public License along with
* Holo. If not, see <http://www.gnu.org/licenses/>.
*
*******************************************************************************/

package selabel

// ErrorCollector is a wrapper around []error that simplifies code where
// multiple errors can happen and need to be aggregated for collective
// display, e.g. every nodups_specs finding during a validating init.
type ErrorCollector struct {
	Errors []error
}

// Add adds an error to this collector. If nil is given, nothing happens, so
// you can safely write
//
//	ec.Add(OperationThatMightFail())
//
// instead of
//
//	err := OperationThatMightFail()
//	if err != nil {
//	    ec.Add(err)
//	}
func (c *ErrorCollector) Add(err error) {
	if err != nil {
		c.Errors = append(c.Errors, err)
	}
}

// Any reports whether any error has been collected.
func (c *ErrorCollector) Any() bool {
	return len(c.Errors) > 0
}
