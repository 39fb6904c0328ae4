/*
Package orm provides typed access to the models kept in a KVStore.

Every bucket owns a key prefix. A model stored under key k in bucket "acct"
is kept in the store under "acct:k".
*/
package orm
